package solana

import "github.com/mr-tron/base58"

// PublicKeyLength is the byte length of a Solana public key.
const PublicKeyLength = 32

// IsValidAddress reports whether s is a base58-encoded 32-byte public key.
func IsValidAddress(s string) bool {
	if s == "" {
		return false
	}
	b, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(b) == PublicKeyLength
}
