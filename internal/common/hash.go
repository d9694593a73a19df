package common

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Sha256Hex returns the SHA-256 digest of the input encoded as lowercase hex.
func Sha256Hex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// FingerprintJSON hashes the JSON encoding of v. Cache keys derived from
// snapshots use it so any change to the inputs produces a different key.
func FingerprintJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Sha256Hex(string(raw)), nil
}
