package notify

import (
	"context"

	"github.com/bitcredit-protocol/bcr-relay/store"
)

// fakeStore is an in-memory stand-in for store.NotificationStore.
type fakeStore struct {
	challenges    map[string]store.Challenge
	confirmations map[string]store.EmailConfirmation // keyed by token
	byNpub        map[string]string                  // npub -> confirmation token
	preferences   map[string]store.EmailPreferences  // keyed by npub
	byToken       map[string]string                  // preferences token -> npub

	failOp string // operation name to force an error for, if any
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		challenges:    map[string]store.Challenge{},
		confirmations: map[string]store.EmailConfirmation{},
		byNpub:        map[string]string{},
		preferences:   map[string]store.EmailPreferences{},
		byToken:       map[string]string{},
	}
}

func (f *fakeStore) err(op string) error {
	if f.failOp == op {
		return errFakeUpstream
	}
	return nil
}

func (f *fakeStore) InsertChallenge(ctx context.Context, npub, challenge string) error {
	if err := f.err("InsertChallenge"); err != nil {
		return err
	}
	c := f.challenges[npub]
	c.Npub = npub
	c.Challenge = challenge
	c.CreatedAt = nowFunc()
	f.challenges[npub] = c
	return nil
}

func (f *fakeStore) GetChallenge(ctx context.Context, npub string) (*store.Challenge, error) {
	if err := f.err("GetChallenge"); err != nil {
		return nil, err
	}
	c, ok := f.challenges[npub]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeStore) DeleteChallenge(ctx context.Context, npub string) error {
	delete(f.challenges, npub)
	return nil
}

func (f *fakeStore) UpsertEmailConfirmation(ctx context.Context, npub, email, token string) error {
	if err := f.err("UpsertEmailConfirmation"); err != nil {
		return err
	}
	f.confirmations[token] = store.EmailConfirmation{Npub: npub, Email: email, SentAt: nowFunc()}
	f.byNpub[npub] = token
	return nil
}

func (f *fakeStore) GetEmailConfirmationByToken(ctx context.Context, token string) (*store.EmailConfirmation, error) {
	if err := f.err("GetEmailConfirmationByToken"); err != nil {
		return nil, err
	}
	c, ok := f.confirmations[token]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeStore) ConfirmEmail(ctx context.Context, npub string) error {
	if err := f.err("ConfirmEmail"); err != nil {
		return err
	}
	if token, ok := f.byNpub[npub]; ok {
		delete(f.confirmations, token)
	}
	p := f.preferences[npub]
	p.EmailConfirmed = true
	p.Enabled = true
	f.preferences[npub] = p
	return nil
}

func (f *fakeStore) GetPreferences(ctx context.Context, npub string) (*store.EmailPreferences, error) {
	if err := f.err("GetPreferences"); err != nil {
		return nil, err
	}
	p, ok := f.preferences[npub]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) GetPreferencesByToken(ctx context.Context, token string) (*store.EmailPreferences, error) {
	if err := f.err("GetPreferencesByToken"); err != nil {
		return nil, err
	}
	npub, ok := f.byToken[token]
	if !ok {
		return nil, nil
	}
	p := f.preferences[npub]
	return &p, nil
}

func (f *fakeStore) InsertPreferencesStub(ctx context.Context, npub, email, token, ebillURL string, flags int64) error {
	if err := f.err("InsertPreferencesStub"); err != nil {
		return err
	}
	f.preferences[npub] = store.EmailPreferences{
		Npub: npub, Email: email, Token: token, EbillURL: ebillURL, Flags: flags,
	}
	f.byToken[token] = npub
	return nil
}

func (f *fakeStore) UpdatePreferences(ctx context.Context, npub string, enabled bool, flags int64) error {
	if err := f.err("UpdatePreferences"); err != nil {
		return err
	}
	p := f.preferences[npub]
	p.Enabled = enabled
	p.Flags = flags
	f.preferences[npub] = p
	return nil
}
