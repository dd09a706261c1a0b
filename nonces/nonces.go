// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package nonces

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ethanlow/agoravote/auth"
)

var (
	ErrNonceNotFound = errors.New("nonce not found")
	ErrNonceExpired  = errors.New("nonce expired")
)

// Store issues and retires single-use login nonces backed by the
// auth_nonce table.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

func NewStore(db *sql.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl}
}

// Issue generates a fresh nonce bound to address and persists it with an
// explicit expiry. Expired rows are reaped opportunistically on the way.
func (s *Store) Issue(address string) (string, error) {
	value, err := auth.GenerateNonce()
	if err != nil {
		return "", err
	}

	now := time.Now()
	_, err = s.db.Exec(`
		INSERT INTO auth_nonce (id, value, address, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), value, strings.ToLower(address), now, now.Add(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}

	// Best-effort reap; stale nonces carry no value once expired
	if _, err := s.db.Exec(`DELETE FROM auth_nonce WHERE expires_at < $1`, now); err != nil {
		slog.Warn("failed to reap expired nonces", "error", err)
	}

	return value, nil
}

// Consume atomically retires the nonce matching (address, value). The
// single DELETE ... RETURNING statement guarantees at most one of two
// racing consumers sees the row; the loser gets ErrNonceNotFound. A row
// past its expiry is still removed but reports ErrNonceExpired.
func (s *Store) Consume(address, value string) error {
	var expiresAt time.Time
	err := s.db.QueryRow(`
		DELETE FROM auth_nonce
		WHERE address = $1 AND value = $2
		RETURNING expires_at
	`, strings.ToLower(address), value).Scan(&expiresAt)

	if err == sql.ErrNoRows {
		return ErrNonceNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to consume nonce: %w", err)
	}

	if time.Now().After(expiresAt) {
		return ErrNonceExpired
	}

	return nil
}
