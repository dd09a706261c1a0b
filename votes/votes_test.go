package votes

import (
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethanlow/agoravote/auth"
	"github.com/ethanlow/agoravote/models"
	"github.com/ethanlow/agoravote/testutil"
)

const voterAddr = "0xAAA0000000000000000000000000000000000aaa"

func TestApplyCreateVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	initiativeID := testutil.CreateTestInitiative(t, db, "0xCreator")
	itemID := testutil.CreateTestItem(t, db, initiativeID, "0xCreator")

	result, err := Apply(db, itemID, auth.Address(voterAddr), models.VoteUp)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if result.UpVotes != 1 || result.DownVotes != 0 {
		t.Errorf("Counters = %d/%d, want 1/0", result.UpVotes, result.DownVotes)
	}
	if result.UserVote == nil || *result.UserVote != models.VoteUp {
		t.Errorf("UserVote = %v, want up", result.UserVote)
	}
	if n := testutil.CountVoteRows(t, db, itemID); n != 1 {
		t.Errorf("Vote rows = %d, want 1", n)
	}
}

func TestApplyToggleOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	initiativeID := testutil.CreateTestInitiative(t, db, "0xCreator")
	itemID := testutil.CreateTestItem(t, db, initiativeID, "0xCreator")

	if _, err := Apply(db, itemID, auth.Address(voterAddr), models.VoteUp); err != nil {
		t.Fatalf("First Apply failed: %v", err)
	}

	result, err := Apply(db, itemID, auth.Address(voterAddr), models.VoteUp)
	if err != nil {
		t.Fatalf("Second Apply failed: %v", err)
	}

	// Idempotent toggle: back to pre-vote state exactly
	if result.UpVotes != 0 || result.DownVotes != 0 {
		t.Errorf("Counters = %d/%d, want 0/0", result.UpVotes, result.DownVotes)
	}
	if result.UserVote != nil {
		t.Errorf("UserVote = %v, want nil", *result.UserVote)
	}
	if n := testutil.CountVoteRows(t, db, itemID); n != 0 {
		t.Errorf("Vote rows = %d, want 0", n)
	}
}

func TestApplyFlip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	initiativeID := testutil.CreateTestInitiative(t, db, "0xCreator")
	itemID := testutil.CreateTestItem(t, db, initiativeID, "0xCreator")

	if _, err := Apply(db, itemID, auth.Address(voterAddr), models.VoteUp); err != nil {
		t.Fatalf("Up vote failed: %v", err)
	}

	result, err := Apply(db, itemID, auth.Address(voterAddr), models.VoteDown)
	if err != nil {
		t.Fatalf("Flip failed: %v", err)
	}

	if result.UpVotes != 0 || result.DownVotes != 1 {
		t.Errorf("Counters = %d/%d, want 0/1", result.UpVotes, result.DownVotes)
	}
	if result.UserVote == nil || *result.UserVote != models.VoteDown {
		t.Errorf("UserVote = %v, want down", result.UserVote)
	}
	if n := testutil.CountVoteRows(t, db, itemID); n != 1 {
		t.Errorf("Vote rows = %d, want 1 (no duplicates on flip)", n)
	}
}

func TestApplyVoterCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	initiativeID := testutil.CreateTestInitiative(t, db, "0xCreator")
	itemID := testutil.CreateTestItem(t, db, initiativeID, "0xCreator")

	if _, err := Apply(db, itemID, auth.Address("0xAbCd000000000000000000000000000000000123"), models.VoteUp); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// Same wallet, different rendering: must toggle, not duplicate
	result, err := Apply(db, itemID, auth.Address("0xABCD000000000000000000000000000000000123"), models.VoteUp)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if result.UpVotes != 0 {
		t.Errorf("UpVotes = %d, want 0 after toggle", result.UpVotes)
	}
	if n := testutil.CountVoteRows(t, db, itemID); n != 0 {
		t.Errorf("Vote rows = %d, want 0", n)
	}
}

func TestApplyMissingItem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	_, err := Apply(db, "no-such-item", auth.Address(voterAddr), models.VoteUp)
	if err != ErrItemNotFound {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
}

func TestCountersMatchRowsAcrossSequence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	initiativeID := testutil.CreateTestInitiative(t, db, "0xCreator")
	itemID := testutil.CreateTestItem(t, db, initiativeID, "0xCreator")

	voters := []string{
		"0x1110000000000000000000000000000000000111",
		"0x2220000000000000000000000000000000000222",
		"0x3330000000000000000000000000000000000333",
	}
	sequence := []struct {
		voter    string
		voteType string
	}{
		{voters[0], models.VoteUp},
		{voters[1], models.VoteDown},
		{voters[2], models.VoteUp},
		{voters[0], models.VoteDown}, // flip
		{voters[1], models.VoteDown}, // toggle off
		{voters[2], models.VoteUp},   // toggle off
		{voters[2], models.VoteUp},   // back on
	}

	for i, step := range sequence {
		if _, err := Apply(db, itemID, auth.Address(step.voter), step.voteType); err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
	}

	up, down := testutil.ItemCounters(t, db, itemID)

	var actualUp, actualDown int
	err := db.QueryRow(`
		SELECT
			COUNT(*) FILTER (WHERE vote_type = 'up'),
			COUNT(*) FILTER (WHERE vote_type = 'down')
		FROM vote WHERE item_id = $1
	`, itemID).Scan(&actualUp, &actualDown)
	if err != nil {
		t.Fatalf("Failed to count vote rows: %v", err)
	}

	if up != actualUp || down != actualDown {
		t.Errorf("Counters %d/%d diverged from rows %d/%d", up, down, actualUp, actualDown)
	}
	if up != 1 || down != 1 {
		t.Errorf("Counters = %d/%d, want 1/1", up, down)
	}
}

// TestConcurrentSameVoter verifies that simultaneous votes from one voter
// on one item never produce duplicate rows: the unique index arbitrates
func TestConcurrentSameVoter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	initiativeID := testutil.CreateTestInitiative(t, db, "0xCreator")
	itemID := testutil.CreateTestItem(t, db, initiativeID, "0xCreator")

	const attempts = 8
	var conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Apply(db, itemID, auth.Address(voterAddr), models.VoteUp)
			if err == ErrVoteConflict {
				conflicts.Add(1)
			} else if err != nil {
				t.Errorf("Apply failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := testutil.CountVoteRows(t, db, itemID); n > 1 {
		t.Errorf("Vote rows = %d, duplicates created under concurrency", n)
	}

	// Counters must agree with whatever final state the races produced
	up, _ := testutil.ItemCounters(t, db, itemID)
	if n := testutil.CountVoteRows(t, db, itemID); up != n {
		t.Errorf("up_votes = %d diverged from %d vote rows", up, n)
	}
}

// TestConcurrentFlipSameVoter starts from an existing vote and fires
// opposite-type actions from the same voter at once. A second voter's
// standing vote keeps the counters away from the CHECK floor, so any
// stale decrement would survive silently; the counters must still match
// the rows by type afterward.
func TestConcurrentFlipSameVoter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	initiativeID := testutil.CreateTestInitiative(t, db, "0xCreator")
	itemID := testutil.CreateTestItem(t, db, initiativeID, "0xCreator")

	other := auth.Address("0xBBB0000000000000000000000000000000000bbb")
	if _, err := Apply(db, itemID, other, models.VoteUp); err != nil {
		t.Fatalf("Seed other voter failed: %v", err)
	}
	if _, err := Apply(db, itemID, auth.Address(voterAddr), models.VoteUp); err != nil {
		t.Fatalf("Seed vote failed: %v", err)
	}

	const attempts = 8
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Apply(db, itemID, auth.Address(voterAddr), models.VoteDown)
			if err != nil && err != ErrVoteConflict {
				t.Errorf("Apply failed: %v", err)
			}
		}()
	}
	wg.Wait()

	assertCountersMatchRows(t, db, itemID)
}

// TestConcurrentToggleOffSameVoter races toggle-off actions against an
// existing vote; at most one may delete the row and decrement
func TestConcurrentToggleOffSameVoter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	initiativeID := testutil.CreateTestInitiative(t, db, "0xCreator")
	itemID := testutil.CreateTestItem(t, db, initiativeID, "0xCreator")

	other := auth.Address("0xBBB0000000000000000000000000000000000bbb")
	if _, err := Apply(db, itemID, other, models.VoteUp); err != nil {
		t.Fatalf("Seed other voter failed: %v", err)
	}
	if _, err := Apply(db, itemID, auth.Address(voterAddr), models.VoteUp); err != nil {
		t.Fatalf("Seed vote failed: %v", err)
	}

	const attempts = 8
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		// Half toggle off, half flip: every interleaving must keep
		// counters consistent with the rows
		voteType := models.VoteUp
		if i%2 == 1 {
			voteType = models.VoteDown
		}
		go func(voteType string) {
			defer wg.Done()
			_, err := Apply(db, itemID, auth.Address(voterAddr), voteType)
			if err != nil && err != ErrVoteConflict {
				t.Errorf("Apply failed: %v", err)
			}
		}(voteType)
	}
	wg.Wait()

	assertCountersMatchRows(t, db, itemID)
}

func assertCountersMatchRows(t *testing.T, db *sql.DB, itemID string) {
	t.Helper()

	up, down := testutil.ItemCounters(t, db, itemID)

	var actualUp, actualDown int
	err := db.QueryRow(`
		SELECT
			COUNT(*) FILTER (WHERE vote_type = 'up'),
			COUNT(*) FILTER (WHERE vote_type = 'down')
		FROM vote WHERE item_id = $1
	`, itemID).Scan(&actualUp, &actualDown)
	if err != nil {
		t.Fatalf("Failed to count vote rows: %v", err)
	}

	if up != actualUp || down != actualDown {
		t.Errorf("Counters %d/%d diverged from rows %d/%d", up, down, actualUp, actualDown)
	}
}

func TestUserVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	initiativeID := testutil.CreateTestInitiative(t, db, "0xCreator")
	item1 := testutil.CreateTestItem(t, db, initiativeID, "0xCreator")
	item2 := testutil.CreateTestItem(t, db, initiativeID, "0xCreator")
	item3 := testutil.CreateTestItem(t, db, initiativeID, "0xCreator")

	voter := auth.Address(voterAddr)
	if _, err := Apply(db, item1, voter, models.VoteUp); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := Apply(db, item2, voter, models.VoteDown); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	got, err := UserVotes(db, initiativeID, voter)
	if err != nil {
		t.Fatalf("UserVotes failed: %v", err)
	}

	if got[item1] != models.VoteUp {
		t.Errorf("item1 vote = %q, want up", got[item1])
	}
	if got[item2] != models.VoteDown {
		t.Errorf("item2 vote = %q, want down", got[item2])
	}
	if _, ok := got[item3]; ok {
		t.Error("item3 should have no vote")
	}
}
