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
	"github.com/ethanlow/agoravote/votes"
)

const maxTitleLen = 100

type InitiativeHandler struct {
	db  *sql.DB
	pol *policy.Policy
}

func NewInitiativeHandler(db *sql.DB, pol *policy.Policy) *InitiativeHandler {
	return &InitiativeHandler{db: db, pol: pol}
}

// List handles GET /initiatives
func (h *InitiativeHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT i.id, i.title, i.description, i.status, i.created_by, i.created_at, i.updated_at,
		       COUNT(it.id)
		FROM initiative i
		LEFT JOIN item it ON it.initiative_id = i.id
		GROUP BY i.id
		ORDER BY i.created_at DESC
	`)
	if err != nil {
		slog.Error("failed to query initiatives", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	initiatives := []models.InitiativeSummary{}
	for rows.Next() {
		var s models.InitiativeSummary
		err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Status,
			&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt, &s.ItemCount)
		if err != nil {
			slog.Error("failed to scan initiative", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		initiatives = append(initiatives, s)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate initiatives", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, initiatives)
}

// Create handles POST /initiatives
func (h *InitiativeHandler) Create(w http.ResponseWriter, r *http.Request, caller auth.Address) {
	var req models.CreateInitiativeRequest
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
	if req.Description == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Description is required")
		return
	}

	initiative := models.Initiative{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusActive,
		CreatedBy:   caller.String(),
		CreatedAt:   time.Now(),
	}
	initiative.UpdatedAt = initiative.CreatedAt

	_, err := h.db.Exec(`
		INSERT INTO initiative (id, title, description, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, initiative.ID, initiative.Title, initiative.Description, initiative.Status,
		initiative.CreatedBy, initiative.CreatedAt)
	if err != nil {
		slog.Error("failed to insert initiative", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create initiative")
		return
	}

	slog.Info("initiative created", "initiative_id", initiative.ID, "created_by", caller.Lower())

	middleware.JSONResponse(w, http.StatusCreated, initiative)
}

// Get handles GET /initiatives/{id}; with a valid token, items carry the
// caller's own vote
func (h *InitiativeHandler) Get(w http.ResponseWriter, r *http.Request, caller auth.Address) {
	id := r.PathValue("id")

	var initiative models.InitiativeWithItems
	err := h.db.QueryRow(`
		SELECT id, title, description, status, created_by, created_at, updated_at
		FROM initiative WHERE id = $1
	`, id).Scan(&initiative.ID, &initiative.Title, &initiative.Description,
		&initiative.Status, &initiative.CreatedBy, &initiative.CreatedAt, &initiative.UpdatedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Initiative not found")
		return
	}
	if err != nil {
		slog.Error("failed to query initiative", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, initiative_id, title, description, status, up_votes, down_votes, created_by, created_at
		FROM item WHERE initiative_id = $1
		ORDER BY created_at DESC
	`, id)
	if err != nil {
		slog.Error("failed to query items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	initiative.Items = []models.Item{}
	for rows.Next() {
		var item models.Item
		err := rows.Scan(&item.ID, &item.InitiativeID, &item.Title, &item.Description,
			&item.Status, &item.UpVotes, &item.DownVotes, &item.CreatedBy, &item.CreatedAt)
		if err != nil {
			slog.Error("failed to scan item", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		initiative.Items = append(initiative.Items, item)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate items", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if caller != "" {
		userVotes, err := votes.UserVotes(h.db, id, caller)
		if err != nil {
			slog.Error("failed to query user votes", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		for i := range initiative.Items {
			if vt, ok := userVotes[initiative.Items[i].ID]; ok {
				v := vt
				initiative.Items[i].UserVote = &v
			}
		}
	}

	middleware.JSONResponse(w, http.StatusOK, initiative)
}

// Update handles PUT /initiatives/{id}
func (h *InitiativeHandler) Update(w http.ResponseWriter, r *http.Request, caller auth.Address) {
	id := r.PathValue("id")

	var req models.UpdateInitiativeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" || req.Description == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Title and description are required")
		return
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Title is too long")
		return
	}
	if !models.ValidStatus(req.Status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid status")
		return
	}

	creator, ok := h.initiativeCreator(w, id)
	if !ok {
		return
	}
	if !h.pol.CanEditInitiative(caller, creator) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not allowed to edit this initiative")
		return
	}

	var initiative models.Initiative
	err := h.db.QueryRow(`
		UPDATE initiative
		SET title = $2, description = $3, status = $4, updated_at = $5
		WHERE id = $1
		RETURNING id, title, description, status, created_by, created_at, updated_at
	`, id, req.Title, req.Description, req.Status, time.Now()).Scan(
		&initiative.ID, &initiative.Title, &initiative.Description, &initiative.Status,
		&initiative.CreatedBy, &initiative.CreatedAt, &initiative.UpdatedAt)
	if err != nil {
		slog.Error("failed to update initiative", "error", err, "initiative_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update initiative")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, initiative)
}

// Delete handles DELETE /initiatives/{id}; items and votes cascade
func (h *InitiativeHandler) Delete(w http.ResponseWriter, r *http.Request, caller auth.Address) {
	id := r.PathValue("id")

	creator, ok := h.initiativeCreator(w, id)
	if !ok {
		return
	}
	if !h.pol.CanEditInitiative(caller, creator) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not allowed to delete this initiative")
		return
	}

	if _, err := h.db.Exec(`DELETE FROM initiative WHERE id = $1`, id); err != nil {
		slog.Error("failed to delete initiative", "error", err, "initiative_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete initiative")
		return
	}

	slog.Info("initiative deleted", "initiative_id", id, "deleted_by", caller.Lower())

	middleware.JSONResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// initiativeCreator looks up the creator, writing the error response
// itself when the initiative is missing or the query fails.
func (h *InitiativeHandler) initiativeCreator(w http.ResponseWriter, id string) (string, bool) {
	var creator string
	err := h.db.QueryRow(`SELECT created_by FROM initiative WHERE id = $1`, id).Scan(&creator)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Initiative not found")
		return "", false
	}
	if err != nil {
		slog.Error("failed to query initiative", "error", err, "initiative_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", false
	}
	return creator, true
}
