// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides wallet-signature authentication primitives: challenge
nonce generation, EIP-191 signature verification, and JWT session tokens.

# Login flow

A client asks for a nonce, signs a challenge message embedding it with
their wallet key, and submits message+signature+address. The server
verifies the signature:

	ok := auth.VerifySignature(message, signature, claimedAddress)

consumes the nonce (see the nonces package), and mints a session token:

	token, err := ts.Issue(addr, nonce)

# Session tokens

Tokens are HS256 JWTs carrying {address, nonce, iat, exp}, signed with a
server-held secret from configuration. Verification failures all collapse
to ErrInvalidToken.

# The Address type

Address values are only produced by signature recovery or token
verification. Handlers take caller identity exclusively as auth.Address,
which makes "trust a client-supplied address field" a type error rather
than a code-review catch.
*/
package auth
