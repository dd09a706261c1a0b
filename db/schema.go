// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Initiatives
CREATE TABLE IF NOT EXISTS initiative (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed', 'cancelled')),
    created_by TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_initiative_created_at ON initiative(created_at);

-- Items
CREATE TABLE IF NOT EXISTS item (
    id TEXT PRIMARY KEY,
    initiative_id TEXT NOT NULL REFERENCES initiative(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed', 'cancelled')),
    up_votes INTEGER NOT NULL DEFAULT 0 CHECK (up_votes >= 0),
    down_votes INTEGER NOT NULL DEFAULT 0 CHECK (down_votes >= 0),
    created_by TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_item_initiative_id ON item(initiative_id);

-- Votes
-- The UNIQUE constraint on (item_id, voter) is the backstop against two
-- concurrent requests creating duplicate votes. Voter addresses are stored
-- lowercased so the constraint is case-insensitive.
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL REFERENCES item(id) ON DELETE CASCADE,
    voter TEXT NOT NULL,
    vote_type TEXT NOT NULL CHECK (vote_type IN ('up', 'down')),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (item_id, voter)
);

CREATE INDEX IF NOT EXISTS idx_vote_item_id ON vote(item_id);

-- Auth nonces
CREATE TABLE IF NOT EXISTS auth_nonce (
    id TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    address TEXT NOT NULL,
    issued_at TIMESTAMP NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_auth_nonce_lookup ON auth_nonce(address, value);
CREATE INDEX IF NOT EXISTS idx_auth_nonce_expires_at ON auth_nonce(expires_at);
`
