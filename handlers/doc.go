// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handlers.

Handlers parse and validate input at the boundary, consult the policy
package for authorization, and run SQL through their injected database
handle. Mutating handlers receive the caller identity as an auth.Address
from the middleware wrappers; no handler ever reads an address from a
request field for authentication. Vote mutations are delegated to
votes.Apply, nonce lifecycle to the nonces store.

Status mapping: 400 validation, 401 missing/invalid token, 403 policy
denied, 404 missing resource, 409 lost concurrency race, 500 everything
unexpected (logged, generic message to the client).
*/
package handlers
