package notify

import (
	"context"
	"errors"
	"time"

	"github.com/bitcredit-protocol/bcr-relay/mailer"
	"github.com/bitcredit-protocol/bcr-relay/ratelimit"
	"github.com/bitcredit-protocol/bcr-relay/store"
)

var errFakeUpstream = errors.New("fake: upstream failure")

func nowFunc() time.Time { return time.Now() }

// fakeSender is an in-memory stand-in for mailer.Sender.
type fakeSender struct {
	sent    []mailer.Message
	failErr error
}

func (f *fakeSender) Send(ctx context.Context, msg mailer.Message) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestHandler(st *fakeStore, sender *fakeSender) *Handler {
	return NewHandler(st, ratelimit.NewLimiter(), sender, "https://relay.example", "noreply@bitcredit.example")
}

func storePreferences(npub, email string) store.EmailPreferences {
	return store.EmailPreferences{
		Npub:     npub,
		Email:    email,
		Token:    "preftok",
		EbillURL: "https://ebill.example",
	}
}

func storeConfirmation(npub, email string) store.EmailConfirmation {
	return store.EmailConfirmation{
		Npub:   npub,
		Email:  email,
		SentAt: time.Now(),
	}
}
