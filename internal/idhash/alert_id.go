package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeAlertID computes a deterministic alert_id using SHA256.
// Formula: SHA256(chain|dex|pair_identity|cycle_id)
// Returns hex-encoded hash (64 characters).
// The cycle id keeps re-alerts of one pair after a restart distinct.
func ComputeAlertID(chain, dex, identity, cycleID string) string {
	data := fmt.Sprintf("%s|%s|%s|%s", chain, dex, identity, cycleID)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
