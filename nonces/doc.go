// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package nonces is the single-use challenge nonce store.

A nonce proves freshness of a signed login message. Each nonce is bound to
the requesting wallet address, carries an explicit expiry (default 5
minutes), and is deleted the moment it is consumed, so a captured
signature cannot be replayed. Consumption is a single conditional
DELETE ... RETURNING, making double-spend impossible even under concurrent
requests; the database, not the application, arbitrates the race.
*/
package nonces
