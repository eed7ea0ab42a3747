// Package anonymize maps raw player identifiers to stable display labels.
//
// The mapping is one-way: labels are derived from a cryptographic digest and
// no reverse mapping is kept anywhere. Because the digest is truncated to
// four hex digits, distinct players can share a label; aggregation always
// groups by the raw identifier and applies the label only at output time,
// so collisions affect display, never counts.
package anonymize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// tokenLen is the number of hex digits kept from the digest.
const tokenLen = 4

// Label returns the anonymized display label for a raw player identifier,
// e.g. "Player #9F86". Deterministic across processes and restarts.
func Label(playerID string) string {
	sum := sha256.Sum256([]byte(playerID))
	token := strings.ToUpper(hex.EncodeToString(sum[:])[:tokenLen])
	return "Player #" + token
}
