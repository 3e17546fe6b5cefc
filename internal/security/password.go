package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// CheckPassword hashes the candidate with sha256 and compares the hex
// digest against the stored one in constant time. The stored secret is
// already a digest, never the raw password.
func CheckPassword(candidate, storedHexDigest string) bool {
	sum := sha256.Sum256([]byte(candidate))
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(storedHexDigest)) == 1
}
