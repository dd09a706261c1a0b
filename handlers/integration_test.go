// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethanlow/agoravote/auth"
	"github.com/ethanlow/agoravote/middleware"
	"github.com/ethanlow/agoravote/models"
	"github.com/ethanlow/agoravote/nonces"
	"github.com/ethanlow/agoravote/policy"
	"github.com/ethanlow/agoravote/testutil"
)

// TestWalletLoginAndVote walks the full authentication contract: request
// a nonce, sign the challenge, exchange it for a token, then use the
// token through the auth middleware to vote and toggle the vote off.
func TestWalletLoginAndVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	store := nonces.NewStore(db, cfg.NonceTTL)

	authHandler := NewAuthHandler(tokens, store)
	initiativeHandler := NewInitiativeHandler(db, policy.New(nil))
	itemHandler := NewItemHandler(db, policy.New(nil))
	votingHandler := NewVotingHandler(db)

	wallet := testutil.NewTestWallet(t)

	// Step 1: request a nonce
	nonce := requestNonce(t, authHandler, wallet.Address)

	// Step 2: sign the challenge and exchange for a token
	message := challengeMessage(nonce)
	w := httptest.NewRecorder()
	authHandler.Verify(w, testutil.MakeRequest("POST", "/auth/verify", models.VerifyRequest{
		Signature: wallet.Sign(t, message),
		Message:   message,
		Address:   wallet.Address,
	}, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Verify: Status = %d: %s", w.Code, w.Body.String())
	}
	var tokenResp models.TokenResponse
	if err := json.NewDecoder(w.Body).Decode(&tokenResp); err != nil {
		t.Fatalf("Failed to decode token: %v", err)
	}
	authHeader := map[string]string{"Authorization": "Bearer " + tokenResp.Token}

	// Step 3: create an initiative with the token
	createInitiative := middleware.RequireAuth(tokens, initiativeHandler.Create)
	w = httptest.NewRecorder()
	createInitiative(w, testutil.MakeRequest("POST", "/initiatives", models.CreateInitiativeRequest{
		Title:       "Park cleanup",
		Description: "Monthly cleanup day",
	}, authHeader))
	if w.Code != http.StatusCreated {
		t.Fatalf("Create initiative: Status = %d: %s", w.Code, w.Body.String())
	}
	var initiative models.Initiative
	if err := json.NewDecoder(w.Body).Decode(&initiative); err != nil {
		t.Fatalf("Failed to decode initiative: %v", err)
	}
	if !auth.Address(initiative.CreatedBy).Equal(wallet.Address) {
		t.Errorf("CreatedBy = %q, want wallet address", initiative.CreatedBy)
	}

	// Step 4: add an item
	createItem := middleware.RequireAuth(tokens, itemHandler.Create)
	req := testutil.MakeRequest("POST", "/initiatives/"+initiative.ID+"/items", models.CreateItemRequest{
		Title: "Bring gloves",
	}, authHeader)
	req.SetPathValue("id", initiative.ID)
	w = httptest.NewRecorder()
	createItem(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Create item: Status = %d: %s", w.Code, w.Body.String())
	}
	var item models.Item
	if err := json.NewDecoder(w.Body).Decode(&item); err != nil {
		t.Fatalf("Failed to decode item: %v", err)
	}

	// Step 5: vote up (0/0 -> 1/0)
	vote := middleware.RequireAuth(tokens, votingHandler.Vote)
	req = testutil.MakeRequest("POST", "/items/"+item.ID+"/vote", models.VoteRequest{Type: models.VoteUp}, authHeader)
	req.SetPathValue("itemId", item.ID)
	w = httptest.NewRecorder()
	vote(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Vote: Status = %d: %s", w.Code, w.Body.String())
	}
	var voteResp models.VoteResponse
	if err := json.NewDecoder(w.Body).Decode(&voteResp); err != nil {
		t.Fatalf("Failed to decode vote response: %v", err)
	}
	if voteResp.UpVotes != 1 || voteResp.DownVotes != 0 {
		t.Errorf("Counts = %d/%d, want 1/0", voteResp.UpVotes, voteResp.DownVotes)
	}

	// Step 6: vote up again, toggling off (1/0 -> 0/0)
	req = testutil.MakeRequest("POST", "/items/"+item.ID+"/vote", models.VoteRequest{Type: models.VoteUp}, authHeader)
	req.SetPathValue("itemId", item.ID)
	w = httptest.NewRecorder()
	vote(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Second vote: Status = %d: %s", w.Code, w.Body.String())
	}
	if err := json.NewDecoder(w.Body).Decode(&voteResp); err != nil {
		t.Fatalf("Failed to decode vote response: %v", err)
	}
	if voteResp.UpVotes != 0 || voteResp.DownVotes != 0 {
		t.Errorf("Counts = %d/%d, want 0/0", voteResp.UpVotes, voteResp.DownVotes)
	}
	if voteResp.UserVote != nil {
		t.Errorf("UserVote = %v, want null", *voteResp.UserVote)
	}

	// A request without the token is rejected before reaching any handler
	req = testutil.MakeRequest("POST", "/items/"+item.ID+"/vote", models.VoteRequest{Type: models.VoteUp}, nil)
	req.SetPathValue("itemId", item.ID)
	w = httptest.NewRecorder()
	vote(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Unauthenticated vote: Status = %d, want 401", w.Code)
	}
}
