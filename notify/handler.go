package notify

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bitcredit-protocol/bcr-relay/mailer"
	"github.com/bitcredit-protocol/bcr-relay/ratelimit"
	"github.com/bitcredit-protocol/bcr-relay/store"
)

// challengeTTL is how long a sign-in challenge from start remains valid
// for register.
const challengeTTL = 120 * time.Second

// confirmationTTL is how long an email confirmation token stays valid.
const confirmationTTL = 24 * time.Hour

// Handler wires the notification state machine's storage, rate limiting,
// and outbound email dependencies onto the HTTP surface.
type Handler struct {
	Store    store.NotificationStore
	Limiter  *ratelimit.Limiter
	Sender   mailer.Sender
	HostURL  string
	MailFrom string
}

// NewHandler builds a Handler from its dependencies.
func NewHandler(st store.NotificationStore, limiter *ratelimit.Limiter, sender mailer.Sender, hostURL, mailFrom string) *Handler {
	return &Handler{
		Store:    st,
		Limiter:  limiter,
		Sender:   sender,
		HostURL:  hostURL,
		MailFrom: mailFrom,
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	return r.RemoteAddr
}

func logUpstream(op string, err error) {
	slog.Error("notify: upstream error", "op", op, "error", err)
}
