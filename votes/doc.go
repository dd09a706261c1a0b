// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package votes is the vote ledger: the state machine relating one voter to
one item (no vote, up, down) and the item's aggregate counters.

Every vote mutation in the system goes through Apply, which executes the
whole transition - read current state, write the vote row, adjust the
item's up_votes/down_votes, re-read the counters - in one database
transaction. The (item_id, voter) unique index is the correctness backstop
for concurrent requests; Apply translates a lost race into ErrVoteConflict
instead of surfacing a raw constraint error.
*/
package votes
