package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// InsertChallenge upserts a fresh sign-in challenge for npub, resetting
// created_at on conflict.
func (p *Postgres) InsertChallenge(ctx context.Context, npub, challenge string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO notif_challenges (npub, challenge) VALUES ($1, $2)
		 ON CONFLICT (npub) DO UPDATE SET challenge = $2, created_at = (NOW() AT TIME ZONE 'UTC')`,
		npub, challenge)
	if err != nil {
		return fmt.Errorf("store: inserting challenge for %s: %w", npub, err)
	}
	return nil
}

// GetChallenge returns the pending challenge for npub, or nil if none.
func (p *Postgres) GetChallenge(ctx context.Context, npub string) (*Challenge, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT npub, challenge, created_at FROM notif_challenges WHERE npub = $1`, npub)

	var c Challenge
	if err := row.Scan(&c.Npub, &c.Challenge, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: getting challenge for %s: %w", npub, err)
	}
	return &c, nil
}

// DeleteChallenge removes the challenge row for npub, if any.
func (p *Postgres) DeleteChallenge(ctx context.Context, npub string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM notif_challenges WHERE npub = $1`, npub)
	if err != nil {
		return fmt.Errorf("store: deleting challenge for %s: %w", npub, err)
	}
	return nil
}

// UpsertEmailConfirmation records a newly sent confirmation token for
// npub, resetting confirmed to false.
func (p *Postgres) UpsertEmailConfirmation(ctx context.Context, npub, email, token string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO notif_email_verification (npub, email, token) VALUES ($1, $2, $3)
		 ON CONFLICT (npub) DO UPDATE SET email = $2, token = $3, confirmed = false, sent_at = (NOW() AT TIME ZONE 'UTC')`,
		npub, email, token)
	if err != nil {
		return fmt.Errorf("store: upserting email confirmation for %s: %w", npub, err)
	}
	return nil
}

// GetEmailConfirmationByToken returns the confirmation row for token, or
// nil if the token is unknown.
func (p *Postgres) GetEmailConfirmationByToken(ctx context.Context, token string) (*EmailConfirmation, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT npub, email, confirmed, sent_at FROM notif_email_verification WHERE token = $1`, token)

	var c EmailConfirmation
	if err := row.Scan(&c.Npub, &c.Email, &c.Confirmed, &c.SentAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: getting email confirmation for token: %w", err)
	}
	return &c, nil
}

// ConfirmEmail marks npub's email confirmed and enables delivery,
// deleting the now-spent confirmation row in the same transaction so a
// crash between the two statements can never leave them inconsistent.
func (p *Postgres) ConfirmEmail(ctx context.Context, npub string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: confirming email for %s: %w", npub, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM notif_email_verification WHERE npub = $1`, npub); err != nil {
		return fmt.Errorf("store: confirming email for %s: %w", npub, err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE notif_email_preferences SET email_confirmed = true, enabled = true WHERE npub = $1`, npub); err != nil {
		return fmt.Errorf("store: confirming email for %s: %w", npub, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: confirming email for %s: %w", npub, err)
	}
	return nil
}

// GetPreferences returns npub's delivery preferences, or nil if absent.
func (p *Postgres) GetPreferences(ctx context.Context, npub string) (*EmailPreferences, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT npub, enabled, token, email, email_confirmed, ebill_url, flags
		 FROM notif_email_preferences WHERE npub = $1`, npub)
	return scanPreferences(row)
}

// GetPreferencesByToken returns the preferences row for a preferences
// capability token, or nil if the token is unknown.
func (p *Postgres) GetPreferencesByToken(ctx context.Context, token string) (*EmailPreferences, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT npub, enabled, token, email, email_confirmed, ebill_url, flags
		 FROM notif_email_preferences WHERE token = $1`, token)
	return scanPreferences(row)
}

func scanPreferences(row pgx.Row) (*EmailPreferences, error) {
	var pr EmailPreferences
	if err := row.Scan(&pr.Npub, &pr.Enabled, &pr.Token, &pr.Email, &pr.EmailConfirmed, &pr.EbillURL, &pr.Flags); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: getting preferences: %w", err)
	}
	return &pr, nil
}

// InsertPreferencesStub creates or resets npub's preferences row:
// disabled and unconfirmed until the email link is clicked.
func (p *Postgres) InsertPreferencesStub(ctx context.Context, npub, email, token, ebillURL string, flags int64) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO notif_email_preferences (npub, email, token, ebill_url, flags)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (npub) DO UPDATE SET email = $2, token = $3, ebill_url = $4, flags = $5,
		   enabled = false, email_confirmed = false`,
		npub, email, token, ebillURL, flags)
	if err != nil {
		return fmt.Errorf("store: inserting preferences stub for %s: %w", npub, err)
	}
	return nil
}

// UpdatePreferences sets npub's enabled flag and notification bitset.
func (p *Postgres) UpdatePreferences(ctx context.Context, npub string, enabled bool, flags int64) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE notif_email_preferences SET enabled = $2, flags = $3 WHERE npub = $1`,
		npub, enabled, flags)
	if err != nil {
		return fmt.Errorf("store: updating preferences for %s: %w", npub, err)
	}
	return nil
}
