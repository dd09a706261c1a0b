// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles server configuration from CLI flags and
environment variables.

Flags take precedence over environment variables. DATABASE_URL and
JWT_SECRET are required; startup fails without them. ADMIN_ADDRESSES is a
comma-separated list of wallet addresses granted admin override on
initiative edits. TOKEN_TTL and NONCE_TTL accept Go duration strings
(default 168h and 5m).
*/
package cliparse
