package relay

import (
	"fmt"
	"time"

	"github.com/bitcredit-protocol/bcr-relay/ratelimit"
)

// WritePolicy is the relay engine's write-policy hook: it rate-limits
// events that reference a BCR chain address, keyed per peer and per
// chain address, and admits everything else unconditionally.
type WritePolicy struct {
	limiter *ratelimit.NostrLimiter
	chains  map[string]struct{}
}

// NewWritePolicy builds a WritePolicy allowing limit hits per window for
// any given (peer, chain key) pair, scoped to the given set of chain IDs.
func NewWritePolicy(limit int, window time.Duration, chains map[string]struct{}) *WritePolicy {
	return &WritePolicy{
		limiter: ratelimit.NewNostrLimiter(limit, window),
		chains:  chains,
	}
}

// Admit reports whether event from peer is accepted. A false result
// carries a human-readable reason, matching the original relay's
// PolicyResult::Reject(reason) contract.
func (p *WritePolicy) Admit(event Event, peer string) (bool, string) {
	key, ok := chainKey(event.Tags, p.chains)
	if !ok {
		return true, ""
	}
	if !p.limiter.Allowed(peer+":"+key, time.Now()) {
		return false, fmt.Sprintf("Rate limit exceeded for BCR chain event %s", key)
	}
	return true, ""
}
