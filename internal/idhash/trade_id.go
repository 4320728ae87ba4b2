package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(ticker|entry_unix_ms|exit_unix_ms|quantity|ordinal)
// The ordinal disambiguates partial fills split from the same lot.
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(ticker string, entryTime, exitTime time.Time, quantity float64, ordinal int) string {
	data := fmt.Sprintf("%s|%d|%d|%.8f|%d",
		ticker,
		entryTime.UTC().UnixMilli(),
		exitTime.UTC().UnixMilli(),
		quantity,
		ordinal,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
