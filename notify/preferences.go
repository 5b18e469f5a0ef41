// Package notify implements the nostr sign-in challenge, email
// confirmation, delivery preferences, and bill-notification dispatch
// state machine.
//
// Challenge rows expire lazily: register rejects a challenge older than
// challengeTTL, and a row is deleted only by a successful register.
// Nothing sweeps stale rows in the background.
package notify

// PreferencesFlags is a bitset over the 21 bill event kinds a receiver
// may subscribe to, persisted as the NotificationStore's flags column.
type PreferencesFlags int64

const (
	BillSigned PreferencesFlags = 1 << iota
	BillAccepted
	BillAcceptanceRequested
	BillAcceptanceRejected
	BillAcceptanceTimeout
	BillAcceptanceRecourse
	BillPaymentRequested
	BillPaymentRejected
	BillPaymentTimeout
	BillPaymentRecourse
	BillRecourseRejected
	BillRecourseTimeout
	BillSellOffered
	BillBuyingRejected
	BillPaid
	BillRecoursePaid
	BillEndorsed
	BillSold
	BillMintingRequested
	BillNewQuote
	BillQuoteApproved
)

// allFlags lists every known flag in declaration order, paired with the
// name used on preference forms.
var allFlags = []struct {
	flag PreferencesFlags
	name string
}{
	{BillSigned, "BillSigned"},
	{BillAccepted, "BillAccepted"},
	{BillAcceptanceRequested, "BillAcceptanceRequested"},
	{BillAcceptanceRejected, "BillAcceptanceRejected"},
	{BillAcceptanceTimeout, "BillAcceptanceTimeout"},
	{BillAcceptanceRecourse, "BillAcceptanceRecourse"},
	{BillPaymentRequested, "BillPaymentRequested"},
	{BillPaymentRejected, "BillPaymentRejected"},
	{BillPaymentTimeout, "BillPaymentTimeout"},
	{BillPaymentRecourse, "BillPaymentRecourse"},
	{BillRecourseRejected, "BillRecourseRejected"},
	{BillRecourseTimeout, "BillRecourseTimeout"},
	{BillSellOffered, "BillSellOffered"},
	{BillBuyingRejected, "BillBuyingRejected"},
	{BillPaid, "BillPaid"},
	{BillRecoursePaid, "BillRecoursePaid"},
	{BillEndorsed, "BillEndorsed"},
	{BillSold, "BillSold"},
	{BillMintingRequested, "BillMintingRequested"},
	{BillNewQuote, "BillNewQuote"},
	{BillQuoteApproved, "BillQuoteApproved"},
}

// DefaultFlags is the flag set a freshly registered receiver starts
// with: every operational bill event except the sell-offered/
// buying-rejected/endorsed/sold/new-quote/quote-approved edges.
const DefaultFlags PreferencesFlags = BillSigned |
	BillAccepted |
	BillAcceptanceRequested |
	BillAcceptanceTimeout |
	BillAcceptanceRejected |
	BillAcceptanceRecourse |
	BillPaid |
	BillPaymentRequested |
	BillPaymentTimeout |
	BillPaymentRejected |
	BillPaymentRecourse |
	BillRecoursePaid |
	BillRecourseRejected |
	BillRecourseTimeout |
	BillMintingRequested

// Has reports whether flag is set.
func (f PreferencesFlags) Has(flag PreferencesFlags) bool {
	return f&flag != 0
}

// FlagByName resolves one of the allFlags names, reporting ok=false for
// anything unrecognized.
func FlagByName(name string) (PreferencesFlags, bool) {
	for _, e := range allFlags {
		if e.name == name {
			return e.flag, true
		}
	}
	return 0, false
}

// FlagsFromFormValues ORs together every name in values that resolves to
// a known flag, silently dropping unknown names.
func FlagsFromFormValues(values []string) PreferencesFlags {
	var out PreferencesFlags
	for _, v := range values {
		if flag, ok := FlagByName(v); ok {
			out |= flag
		}
	}
	return out
}

// Title returns the human-readable sentence describing a single flag,
// used as both email subject and link title. Callers must pass exactly
// one set bit; multi-bit or zero input returns the generic fallback.
func (f PreferencesFlags) Title() string {
	switch f {
	case BillSigned:
		return "You have been issued an eBill."
	case BillAccepted:
		return "An eBill has been accepted."
	case BillAcceptanceRequested:
		return "You have been requested to accept an eBill."
	case BillAcceptanceRejected:
		return "Acceptance of an eBill has been rejected."
	case BillAcceptanceTimeout:
		return "Acceptance of an eBill has timed out."
	case BillAcceptanceRecourse:
		return "You have been recoursed against on an eBill because of acceptance."
	case BillPaymentRequested:
		return "You have been requested to pay an eBill."
	case BillPaymentRejected:
		return "Payment of an eBill has been rejected."
	case BillPaymentTimeout:
		return "Payment of an eBill has timed out."
	case BillPaymentRecourse:
		return "You have been recoursed against on an eBill because of payment."
	case BillRecourseRejected:
		return "Recourse of an eBill has been rejected."
	case BillRecourseTimeout:
		return "Recourse of an eBill has timed out."
	case BillSellOffered:
		return "You have been offered to buy an eBill."
	case BillBuyingRejected:
		return "Buying of an eBill has been rejected."
	case BillPaid:
		return "An eBill has been paid"
	case BillRecoursePaid:
		return "Recourse of an eBill has been paid."
	case BillEndorsed:
		return "You have been endorsed an eBill."
	case BillSold:
		return "You have bought an eBill."
	case BillMintingRequested:
		return "You have been requested to mint an eBill."
	case BillNewQuote:
		return "There is a new quote for an eBill."
	case BillQuoteApproved:
		return "A quote for an eBill has been approved."
	default:
		return "You have received a notification."
	}
}

// FlagForKind maps a payload "kind" string (the same spelling used as a
// flag name) onto its flag, if it names one.
func FlagForKind(kind string) (PreferencesFlags, bool) {
	return FlagByName(kind)
}

// preferencesFormField describes one checkbox on the preferences page.
type preferencesFormField struct {
	Checked bool
	Value   int64
	Name    string
}

func (f PreferencesFlags) formFields() []preferencesFormField {
	out := make([]preferencesFormField, 0, len(allFlags))
	for _, e := range allFlags {
		out = append(out, preferencesFormField{
			Checked: f.Has(e.flag),
			Value:   int64(e.flag),
			Name:    e.name,
		})
	}
	return out
}
