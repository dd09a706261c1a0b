// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package router wires routes to handlers using Go 1.22+ method/path
// patterns, wrapping each route with logging and, where required, bearer
// token authentication. The whole mux sits behind the CORS middleware.
package router
