// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidSignature = errors.New("invalid signature")

// RecoverAddress recovers the wallet address that produced signature over
// message, using the EIP-191 personal-message scheme (the format wallets
// use for personal_sign). The signature is 65 bytes hex, with either the
// legacy 27/28 or the raw 0/1 recovery id convention.
//
// Any malformed input or recovery failure yields ErrInvalidSignature; the
// function never panics on attacker-controlled bytes.
func RecoverAddress(message, signature string) (Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return "", ErrInvalidSignature
	}

	// Normalize the recovery id without mutating the caller's view
	sig = append([]byte(nil), sig...)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return "", ErrInvalidSignature
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", ErrInvalidSignature
	}

	return Address(crypto.PubkeyToAddress(*pub).Hex()), nil
}

// VerifySignature reports whether signature over message was produced by
// the key behind claimedAddress. The claimed address is used only for this
// comparison; callers wanting the proven identity should use the returned
// Address from RecoverAddress instead of trusting claimedAddress. Fails
// closed on any malformed input.
func VerifySignature(message, signature, claimedAddress string) bool {
	if !common.IsHexAddress(claimedAddress) {
		return false
	}
	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		return false
	}
	return recovered.Equal(claimedAddress)
}
