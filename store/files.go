package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Get returns the file stored under hash, or nil if absent.
func (p *Postgres) Get(ctx context.Context, hash [32]byte) (*File, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT hash, data, size FROM files WHERE hash = $1`,
		hex.EncodeToString(hash[:]))

	var hashHex string
	var data []byte
	var size int32
	if err := row.Scan(&hashHex, &data, &size); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: getting file %x: %w", hash, err)
	}

	decoded, err := hex.DecodeString(hashHex)
	if err != nil || len(decoded) != 32 {
		return nil, fmt.Errorf("store: corrupt hash column %q", hashHex)
	}
	var out [32]byte
	copy(out[:], decoded)

	return &File{Hash: out, Bytes: data, Size: size}, nil
}

// Insert stores f, doing nothing if a row for its hash already exists.
func (p *Postgres) Insert(ctx context.Context, f File) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO files (hash, data, size) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		hex.EncodeToString(f.Hash[:]), f.Bytes, f.Size)
	if err != nil {
		return fmt.Errorf("store: inserting file %x: %w", f.Hash, err)
	}
	return nil
}
