package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"solana-pair-radar/internal/domain"
)

// ComputePairFingerprint computes a deterministic fingerprint of a raw record.
// Formula: SHA256(canonical JSON with sorted keys)
// Returns hex-encoded hash (64 characters).
// Identical content yields the same fingerprint across fetches.
func ComputePairFingerprint(rec domain.RawRecord) string {
	data, err := json.Marshal(rec)
	if err != nil {
		// fmt prints maps in sorted key order, so this stays deterministic.
		data = []byte(fmt.Sprintf("%v", map[string]any(rec)))
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
