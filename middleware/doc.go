// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and JSON helpers.

RequireAuth and OptionalAuth extract and verify the Authorization bearer
token and hand the handler an auth.Address; handlers never read identity
from anywhere else. WithLogging emits slog request start/finish lines.
CORS handles cross-origin and preflight requests with a configured origin.
*/
package middleware
