// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ethanlow/agoravote/auth"
	"github.com/ethanlow/agoravote/middleware"
	"github.com/ethanlow/agoravote/models"
	"github.com/ethanlow/agoravote/nonces"
)

// noncePrefix marks the nonce inside the challenge message the wallet signs.
const noncePrefix = "Nonce: "

type AuthHandler struct {
	tokens *auth.TokenService
	nonces *nonces.Store
}

func NewAuthHandler(tokens *auth.TokenService, store *nonces.Store) *AuthHandler {
	return &AuthHandler{tokens: tokens, nonces: store}
}

// Nonce handles GET|POST /auth/nonce
func (h *AuthHandler) Nonce(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" && r.Method == http.MethodPost {
		var req models.NonceRequest
		if err := middleware.ParseJSONBody(r, &req); err == nil {
			address = req.Address
		}
	}

	if address == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "address is required")
		return
	}
	if !auth.ValidAddress(address) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "address is not a valid wallet address")
		return
	}

	nonce, err := h.nonces.Issue(address)
	if err != nil {
		slog.Error("failed to issue nonce", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue nonce")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.NonceResponse{Nonce: nonce})
}

// Verify handles POST /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Signature == "" || req.Message == "" || req.Address == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "signature, message, and address are required")
		return
	}

	// The recovered address, not the claimed one, becomes the session
	// identity; the claim only has to match it.
	recovered, err := auth.RecoverAddress(req.Message, req.Signature)
	if err != nil || !recovered.Equal(req.Address) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	nonce := extractNonce(req.Message)
	if nonce == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid or expired nonce")
		return
	}

	switch err := h.nonces.Consume(req.Address, nonce); err {
	case nil:
		// consumed, proceed
	case nonces.ErrNonceNotFound, nonces.ErrNonceExpired:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid or expired nonce")
		return
	default:
		slog.Error("failed to consume nonce", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to verify signature")
		return
	}

	token, err := h.tokens.Issue(recovered, nonce)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to verify signature")
		return
	}

	slog.Info("wallet authenticated", "address", recovered.Lower())

	middleware.JSONResponse(w, http.StatusOK, models.TokenResponse{Token: token})
}

// extractNonce pulls the nonce out of the signed challenge message
// ("...Nonce: <value>").
func extractNonce(message string) string {
	idx := strings.LastIndex(message, noncePrefix)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(message[idx+len(noncePrefix):])
}
