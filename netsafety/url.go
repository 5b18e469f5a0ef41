// Package netsafety implements the URL and IP validation the outbound
// proxy applies to a target URL and to every redirect hop it follows, to
// keep the proxy from being turned into an SSRF pivot.
package netsafety

import (
	"fmt"
	"net/url"
)

// ValidateURL checks the structural requirements on a proxy target: the
// scheme must be https, no userinfo may be present, and a host is
// required. IP-level checks are a separate step (see Resolver).
func ValidateURL(u *url.URL) error {
	if u.Scheme != "https" {
		return fmt.Errorf("netsafety: scheme must be https, got %q", u.Scheme)
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			return fmt.Errorf("netsafety: url must not carry a password")
		}
		if u.User.Username() != "" {
			return fmt.Errorf("netsafety: url must not carry a username")
		}
	}
	if u.Hostname() == "" {
		return fmt.Errorf("netsafety: url must have a host")
	}
	return nil
}
