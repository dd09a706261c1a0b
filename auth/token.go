// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every token verification failure: bad signature,
// malformed payload, wrong algorithm, expiry. Callers must not distinguish
// reasons; a single opaque failure avoids giving probing clients an oracle.
var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a session token. Address is the authenticated wallet
// address; Nonce is the challenge nonce consumed when the session was
// established.
type Claims struct {
	jwt.RegisteredClaims
	Address string `json:"address"`
	Nonce   string `json:"nonce"`
}

// TokenService mints and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue creates a signed session token for address, recording the consumed
// nonce. The token expires ttl after issuance.
func (s *TokenService) Issue(address Address, nonce string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Address: string(address),
		Nonce:   nonce,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks tokenString's signature and validity window and returns
// its claims. The Address method is the only supported way for request
// handling to learn the caller's identity.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Address == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Addr returns the authenticated address carried by verified claims.
func (c *Claims) Addr() Address {
	return Address(c.Address)
}
