package auth

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidAddress reports whether s is a well-formed hex wallet address.
// Validation only; it says nothing about ownership.
func ValidAddress(s string) bool {
	return common.IsHexAddress(s)
}

// Address is an authenticated wallet address. Values are only produced by
// successful signature recovery (RecoverAddress) or token verification
// (TokenService.Verify), so a handler holding an Address knows the caller
// proved ownership of it. Client-supplied strings must never be cast to
// Address outside this package.
type Address string

// Equal compares a against a raw address string. Wallet addresses are
// case-equivalent, so the comparison is case-insensitive.
func (a Address) Equal(other string) bool {
	return strings.EqualFold(string(a), other)
}

// Lower returns the lowercased form, used for storage keys so database
// uniqueness constraints are case-insensitive.
func (a Address) Lower() string {
	return strings.ToLower(string(a))
}

func (a Address) String() string {
	return string(a)
}
