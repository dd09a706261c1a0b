// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ethanlow/agoravote/auth"
	"github.com/ethanlow/agoravote/middleware"
	"github.com/ethanlow/agoravote/models"
	"github.com/ethanlow/agoravote/policy"
)

type ItemHandler struct {
	db  *sql.DB
	pol *policy.Policy
}

func NewItemHandler(db *sql.DB, pol *policy.Policy) *ItemHandler {
	return &ItemHandler{db: db, pol: pol}
}

// Create handles POST /initiatives/{id}/items
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request, caller auth.Address) {
	initiativeID := r.PathValue("id")

	var req models.CreateItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Title is required")
		return
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Title is too long")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM initiative WHERE id = $1)`, initiativeID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check initiative", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Initiative not found")
		return
	}

	item := models.Item{
		ID:           uuid.NewString(),
		InitiativeID: initiativeID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       models.StatusActive,
		CreatedBy:    caller.String(),
		CreatedAt:    time.Now(),
	}

	_, err = h.db.Exec(`
		INSERT INTO item (id, initiative_id, title, description, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.InitiativeID, item.Title, item.Description, item.Status,
		item.CreatedBy, item.CreatedAt)
	if err != nil {
		slog.Error("failed to insert item", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create item")
		return
	}

	slog.Info("item created", "item_id", item.ID, "initiative_id", initiativeID, "created_by", caller.Lower())

	middleware.JSONResponse(w, http.StatusCreated, item)
}

// UpdateStatus handles PATCH /items/{itemId}/status. Either the item's
// creator or the parent initiative's creator may change an item's status.
func (h *ItemHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, caller auth.Address) {
	itemID := r.PathValue("itemId")

	var req models.UpdateItemStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !models.ValidStatus(req.Status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid status")
		return
	}

	var itemCreator, initiativeCreator string
	err := h.db.QueryRow(`
		SELECT it.created_by, i.created_by
		FROM item it
		JOIN initiative i ON i.id = it.initiative_id
		WHERE it.id = $1
	`, itemID).Scan(&itemCreator, &initiativeCreator)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		slog.Error("failed to query item", "error", err, "item_id", itemID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !h.pol.CanEditItemStatus(caller, initiativeCreator, itemCreator) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not allowed to edit this item")
		return
	}

	var item models.Item
	err = h.db.QueryRow(`
		UPDATE item SET status = $2 WHERE id = $1
		RETURNING id, initiative_id, title, description, status, up_votes, down_votes, created_by, created_at
	`, itemID, req.Status).Scan(&item.ID, &item.InitiativeID, &item.Title, &item.Description,
		&item.Status, &item.UpVotes, &item.DownVotes, &item.CreatedBy, &item.CreatedAt)
	if err != nil {
		slog.Error("failed to update item status", "error", err, "item_id", itemID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update item status")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, item)
}
