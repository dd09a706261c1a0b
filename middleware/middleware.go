// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethanlow/agoravote/auth"
	"github.com/ethanlow/agoravote/models"
)

// AuthHandler is a handler that receives the authenticated caller address.
// The address comes only from a verified bearer token.
type AuthHandler func(w http.ResponseWriter, r *http.Request, caller auth.Address)

// WithLogging wraps a handler with request logging
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Log request
		slog.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		// Call the next handler
		next(w, r)

		// Log completion
		duration := time.Since(start)
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// RequireAuth wraps a handler so it only runs with a valid bearer token,
// passing the token's address through. Missing or invalid tokens get 401;
// the reason is not distinguished to the client.
func RequireAuth(ts *auth.TokenService, next AuthHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := ts.Verify(token)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid authentication")
			return
		}

		next(w, r, claims.Addr())
	}
}

// OptionalAuth passes the caller address when a valid bearer token is
// present and the zero Address otherwise. Used by read endpoints that
// annotate the caller's own votes. An invalid token is treated as absent
// rather than rejected.
func OptionalAuth(ts *auth.TokenService, next AuthHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var caller auth.Address
		if token := bearerToken(r); token != "" {
			if claims, err := ts.Verify(token); err == nil {
				caller = claims.Addr()
			}
		}
		next(w, r, caller)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return header[len(prefix):]
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// CORS middleware allows cross-origin requests from the frontend.
// allowedOrigin comes from configuration; empty reflects the request
// origin (development mode).
func CORS(allowedOrigin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := allowedOrigin
		if origin == "" {
			origin = r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
