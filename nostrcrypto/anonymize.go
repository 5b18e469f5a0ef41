package nostrcrypto

import "strings"

// AnonymizeEmail masks an email address for log/page display, keeping the
// first 2 characters of the local part and the last 3 of the domain. A
// part shorter than 3 characters is dropped entirely.
func AnonymizeEmail(email string) string {
	before, after, found := strings.Cut(email, "@")
	if !found {
		return "****@*****"
	}

	var firstN string
	if len(before) >= 3 {
		firstN = before[:2]
	}

	var lastN string
	if len(after) >= 3 {
		lastN = after[len(after)-3:]
	}

	return firstN + "***@***" + lastN
}
