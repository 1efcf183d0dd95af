package utils

import (
	"crypto/sha256"
	"fmt"
)

// HashToken returns the hex SHA-256 digest of an opaque session token.
// Only the digest is ever stored server-side.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", sum)
}
