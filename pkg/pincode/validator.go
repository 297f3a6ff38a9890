package pincode

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Validator compares submitted codes against the current system PIN. When no
// plaintext PIN is cached, the hex SHA-256 of the input is matched against
// the stored hash.
type Validator struct {
	code string
	hash string
}

// NewValidator creates a validator over the cached PIN value and hash.
func NewValidator(code, hash string) Validator {
	return Validator{code: code, hash: hash}
}

// Check reports whether input matches the system PIN. Empty input never
// matches.
func (v Validator) Check(input string) bool {
	if input == "" {
		return false
	}
	if v.code != "" {
		return v.code == input
	}
	if v.hash == "" {
		return false
	}
	sum := sha256.Sum256([]byte(input))
	return strings.EqualFold(hex.EncodeToString(sum[:]), v.hash)
}

// Unacceptable reports whether a new PIN is forbidden for the given country.
// French regulation disallows the trivial "0000".
func Unacceptable(country, pin string) bool {
	return strings.EqualFold(country, "FRA") && pin == "0000"
}
