// Package store implements Postgres-backed persistence for blob storage
// and the notification workflow's challenge/confirmation/preferences
// state, behind narrow interfaces so handlers and tests depend only on
// the operations they actually use.
package store

import "time"

// File is a content-addressed blob as stored by the blossom endpoints.
type File struct {
	Hash  [32]byte
	Bytes []byte
	Size  int32
}

// Challenge is a pending nostr sign-in challenge for a given npub.
type Challenge struct {
	Npub      string
	Challenge string
	CreatedAt time.Time
}

// EmailConfirmation is the state of an in-flight email confirmation.
type EmailConfirmation struct {
	Npub      string
	Email     string
	Confirmed bool
	SentAt    time.Time
}

// EmailPreferences is a receiver's notification delivery configuration.
type EmailPreferences struct {
	Npub           string
	Enabled        bool
	Token          string
	Email          string
	EmailConfirmed bool
	EbillURL       string
	Flags          int64
}
