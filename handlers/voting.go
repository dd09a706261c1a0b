// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/ethanlow/agoravote/auth"
	"github.com/ethanlow/agoravote/middleware"
	"github.com/ethanlow/agoravote/models"
	"github.com/ethanlow/agoravote/votes"
)

type VotingHandler struct {
	db *sql.DB
}

func NewVotingHandler(db *sql.DB) *VotingHandler {
	return &VotingHandler{db: db}
}

// Vote handles POST /items/{itemId}/vote. The whole transition (row
// mutation plus counter updates) runs in one transaction inside
// votes.Apply; the response carries the post-transition counts and the
// caller's remaining vote.
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request, caller auth.Address) {
	itemID := r.PathValue("itemId")

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !models.ValidVoteType(req.Type) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "type must be 'up' or 'down'")
		return
	}

	result, err := votes.Apply(h.db, itemID, caller, req.Type)
	switch err {
	case nil:
		// fall through
	case votes.ErrItemNotFound:
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	case votes.ErrVoteConflict:
		middleware.ErrorResponse(w, http.StatusConflict, "Concurrent vote, please retry")
		return
	default:
		slog.Error("failed to apply vote", "error", err, "item_id", itemID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to process vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		UpVotes:   result.UpVotes,
		DownVotes: result.DownVotes,
		UserVote:  result.UserVote,
	})
}
