// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Agoravote API server.

Agoravote is a community voting service: users authenticate by signing a
challenge with their wallet key, create initiatives with child items, and
cast up/down votes on items.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... JWT_SECRET=... go run main.go

Or with flags:

	go run main.go -p 8080 -d "postgres://..."

A .env file in the working directory is loaded before flags are parsed.

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string
  - JWT_SECRET (--jwt-secret): Secret for signing session tokens

Optional settings:

  - PORT (-p): Server port (default: 8080)
  - ADMIN_ADDRESSES (--admins): Comma-separated wallet addresses with
    admin override on initiative edits
  - CORS_ORIGIN (--cors-origin): Allowed origin for browser clients

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (auth, initiatives, items, voting)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, bearer-token auth
  - models: Request/response types
  - auth: Signature verification and session tokens
  - policy: Authorization predicates
  - nonces: Single-use challenge nonce store
  - votes: Vote state machine and aggregate counters
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
