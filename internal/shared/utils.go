package shared

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates a hex string from size random bytes, so the
// resulting string is twice as long as size. It returns an error only if the
// system random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
