// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/ethanlow/agoravote/auth"
	"github.com/ethanlow/agoravote/cliparse"
	"github.com/ethanlow/agoravote/handlers"
	"github.com/ethanlow/agoravote/middleware"
	"github.com/ethanlow/agoravote/nonces"
	"github.com/ethanlow/agoravote/policy"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	nonceStore := nonces.NewStore(db, cfg.NonceTTL)
	pol := policy.New(cfg.AdminAddresses)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(tokens, nonceStore)
	initiativeHandler := handlers.NewInitiativeHandler(db, pol)
	itemHandler := handlers.NewItemHandler(db, pol)
	votingHandler := handlers.NewVotingHandler(db)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication
	mux.HandleFunc("GET /auth/nonce", middleware.WithLogging(authHandler.Nonce))
	mux.HandleFunc("POST /auth/nonce", middleware.WithLogging(authHandler.Nonce))
	mux.HandleFunc("POST /auth/verify", middleware.WithLogging(authHandler.Verify))

	// Initiatives
	mux.HandleFunc("GET /initiatives", middleware.WithLogging(initiativeHandler.List))
	mux.HandleFunc("POST /initiatives", middleware.WithLogging(middleware.RequireAuth(tokens, initiativeHandler.Create)))
	mux.HandleFunc("GET /initiatives/{id}", middleware.WithLogging(middleware.OptionalAuth(tokens, initiativeHandler.Get)))
	mux.HandleFunc("PUT /initiatives/{id}", middleware.WithLogging(middleware.RequireAuth(tokens, initiativeHandler.Update)))
	mux.HandleFunc("DELETE /initiatives/{id}", middleware.WithLogging(middleware.RequireAuth(tokens, initiativeHandler.Delete)))

	// Items
	mux.HandleFunc("POST /initiatives/{id}/items", middleware.WithLogging(middleware.RequireAuth(tokens, itemHandler.Create)))
	mux.HandleFunc("PATCH /items/{itemId}/status", middleware.WithLogging(middleware.RequireAuth(tokens, itemHandler.UpdateStatus)))

	// Voting
	mux.HandleFunc("POST /items/{itemId}/vote", middleware.WithLogging(middleware.RequireAuth(tokens, votingHandler.Vote)))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("agoravote API v1"))
	})

	return middleware.CORS(cfg.CORSOrigin, mux)
}
