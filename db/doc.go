// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

The schema is created with IF NOT EXISTS clauses, so CreateSchema is safe
to call on every startup. Tables:

  - initiative: top-level discussion containers
  - item: child proposals, carrying denormalized up_votes/down_votes
    counters maintained transactionally by the votes package
  - vote: one row per (item, voter), enforced by a unique constraint
  - auth_nonce: single-use login challenge nonces with explicit expiry
*/
package db
