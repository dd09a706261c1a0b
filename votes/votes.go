// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ethanlow/agoravote/auth"
	"github.com/ethanlow/agoravote/models"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrVoteConflict = errors.New("concurrent vote conflict")
)

// Result is the post-transition state for one (item, voter) pair: the
// item's aggregate counters and the voter's remaining vote (nil after a
// toggle-off).
type Result struct {
	UpVotes   int
	DownVotes int
	UserVote  *string
}

// Apply runs one vote action through the per-(item, voter) state machine:
//
//	no vote   --up-->   up       (insert row, up_votes+1)
//	up        --up-->   no vote  (delete row, up_votes-1)
//	up        --down--> down     (flip row, up_votes-1, down_votes+1)
//
// and symmetrically for down. Row mutation, counter updates, and the
// re-read of the counters all happen in a single transaction, so the
// counters never drift from the vote rows and two concurrent requests
// from the same voter cannot both create a row: the loser of that race
// hits the (item_id, voter) unique index and gets ErrVoteConflict.
func Apply(db *sql.DB, itemID string, voter auth.Address, voteType string) (Result, error) {
	tx, err := db.Begin()
	if err != nil {
		return Result{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Item must exist before anything else; also anchors the FK
	var exists bool
	err = tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM item WHERE id = $1)`, itemID).Scan(&exists)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check item: %w", err)
	}
	if !exists {
		return Result{}, ErrItemNotFound
	}

	var existingType string
	err = tx.QueryRow(`
		SELECT vote_type FROM vote WHERE item_id = $1 AND voter = $2
	`, itemID, voter.Lower()).Scan(&existingType)

	var userVote *string

	switch {
	case err == sql.ErrNoRows:
		// No vote -> voteType
		_, err = tx.Exec(`
			INSERT INTO vote (id, item_id, voter, vote_type, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), itemID, voter.Lower(), voteType, time.Now())
		if err != nil {
			if isUniqueViolation(err) {
				return Result{}, ErrVoteConflict
			}
			return Result{}, fmt.Errorf("failed to insert vote: %w", err)
		}
		if err := adjustCounter(tx, itemID, voteType, +1); err != nil {
			return Result{}, err
		}
		userVote = &voteType

	case err != nil:
		return Result{}, fmt.Errorf("failed to query vote: %w", err)

	case existingType == voteType:
		// Toggle off. A concurrent request may have removed or flipped
		// the row after our read; the type predicate keeps this DELETE
		// from re-qualifying a row whose type changed under us, and a
		// zero-row result means the counters must not move.
		res, err := tx.Exec(`
			DELETE FROM vote WHERE item_id = $1 AND voter = $2 AND vote_type = $3
		`, itemID, voter.Lower(), voteType)
		if err != nil {
			return Result{}, fmt.Errorf("failed to delete vote: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return Result{}, ErrVoteConflict
		}
		if err := adjustCounter(tx, itemID, voteType, -1); err != nil {
			return Result{}, err
		}
		userVote = nil

	default:
		// Flip. Matching on the type we read means a row a concurrent
		// request already transitioned no longer qualifies, so the
		// stale counter adjustments below never run for it.
		res, err := tx.Exec(`
			UPDATE vote SET vote_type = $3 WHERE item_id = $1 AND voter = $2 AND vote_type = $4
		`, itemID, voter.Lower(), voteType, existingType)
		if err != nil {
			return Result{}, fmt.Errorf("failed to update vote: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return Result{}, ErrVoteConflict
		}
		if err := adjustCounter(tx, itemID, existingType, -1); err != nil {
			return Result{}, err
		}
		if err := adjustCounter(tx, itemID, voteType, +1); err != nil {
			return Result{}, err
		}
		userVote = &voteType
	}

	// Counters re-read inside the transaction reflect the transition just made
	var result Result
	err = tx.QueryRow(`
		SELECT up_votes, down_votes FROM item WHERE id = $1
	`, itemID).Scan(&result.UpVotes, &result.DownVotes)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read counters: %w", err)
	}
	result.UserVote = userVote

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return Result{}, ErrVoteConflict
		}
		return Result{}, fmt.Errorf("failed to commit vote: %w", err)
	}

	return result, nil
}

func adjustCounter(tx *sql.Tx, itemID, voteType string, delta int) error {
	column := "up_votes"
	if voteType == models.VoteDown {
		column = "down_votes"
	}

	_, err := tx.Exec(`
		UPDATE item SET `+column+` = `+column+` + $2 WHERE id = $1
	`, itemID, delta)
	if err != nil {
		// A decrement tripping the >= 0 check means a racing request
		// already took the counter down for this row
		if isCheckViolation(err) {
			return ErrVoteConflict
		}
		return fmt.Errorf("failed to adjust %s: %w", column, err)
	}
	return nil
}

// UserVotes returns the caller's current vote per item for one
// initiative, keyed by item ID. Used by read endpoints to annotate items.
func UserVotes(db *sql.DB, initiativeID string, voter auth.Address) (map[string]string, error) {
	rows, err := db.Query(`
		SELECT v.item_id, v.vote_type
		FROM vote v
		JOIN item i ON i.id = v.item_id
		WHERE i.initiative_id = $1 AND v.voter = $2
	`, initiativeID, voter.Lower())
	if err != nil {
		return nil, fmt.Errorf("failed to query user votes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var itemID, voteType string
		if err := rows.Scan(&itemID, &voteType); err != nil {
			return nil, fmt.Errorf("failed to scan user vote: %w", err)
		}
		out[itemID] = voteType
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isCheckViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23514"
}
