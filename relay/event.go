// Package relay implements the in-scope edge of the pub/sub relay: the
// write policy that rate-limits blockchain-reference events, and the
// WebSocket attach point that exercises it. Subscriptions, NIP-42 auth,
// and event storage belong to the underlying relay engine and are not
// reimplemented here.
package relay

// Event is the minimal structural view of a relay event the write policy
// needs: its kind and its tags. Signature and storage fields are the
// relay engine's concern, not this package's.
type Event struct {
	Kind int      `json:"kind"`
	Tags [][]string `json:"tags"`
}

const (
	bcrChainPrefix = "bitcredit"
	tagKindAddress = "i"
)

// chainKey extracts the rate-limit key for a BCR chain-reference event:
// the first "i" tag whose chain is "bitcredit" and whose chain_id is one
// of the configured chains. The tag shape is either exactly
// ["i", "bitcredit:<chain_id>:<address>"] or a tag of 4 or more elements
// ["i", chain, chainID, address, ...] — both are accepted since
// the original's ExternalContentId encodes the same three fields and
// different nostr SDKs flatten it differently.
func chainKey(tags [][]string, allowed map[string]struct{}) (string, bool) {
	for _, tag := range tags {
		if len(tag) == 0 || tag[0] != tagKindAddress {
			continue
		}
		chain, chainID, address, ok := parseAddressTag(tag)
		if !ok || chain != bcrChainPrefix {
			continue
		}
		if _, known := allowed[chainID]; !known {
			continue
		}
		return chainID + ":" + address, true
	}
	return "", false
}

// parseAddressTag accepts either a colon-joined single value
// ("bitcredit:bill:addr123") in tag[1], or three discrete fields spread
// across tag[1:4].
func parseAddressTag(tag []string) (chain, chainID, address string, ok bool) {
	if len(tag) >= 4 {
		return tag[1], tag[2], tag[3], true
	}
	if len(tag) == 2 {
		parts := splitN(tag[1], ':', 3)
		if len(parts) == 3 {
			return parts[0], parts[1], parts[2], true
		}
	}
	return "", "", "", false
}

func splitN(s string, sep byte, n int) []string {
	var out []string
	start := 0
	for i := 0; i < len(s) && len(out) < n-1; i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
