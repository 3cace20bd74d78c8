package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// MakeRandHexString returns a hex string built from size cryptographically
// random bytes (so the result is 2*size characters long). Raw refresh tokens
// are produced with size=32, i.e. 256 bits of entropy.
func MakeRandHexString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error reading random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
