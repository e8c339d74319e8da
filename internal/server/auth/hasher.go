// Package auth implements the credential primitives of the server: password
// hashing, signed access/refresh token issuance and verification, and the
// password-reset token protocol.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"credkeeper/internal/shared"
)

// Hasher performs one-way password hashing with bcrypt. The cost parameter
// controls the adaptive work factor.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher. Costs outside the bcrypt range fall back to
// the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of the given plaintext password.
func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrorHashing, err)
	}
	return string(b), nil
}

// Verify reports whether password matches the stored hash. It never returns
// an error: any mismatch or malformed hash yields false. bcrypt's comparison
// does not leak where the values first differ.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SelfTest hashes and verifies a probe value. It is run once at startup; a
// failure here means the hashing backend is unusable and the server must not
// accept registrations.
func (h *Hasher) SelfTest() error {
	const probe = "self-test-probe"
	hash, err := h.Hash(probe)
	if err != nil {
		return err
	}
	if !h.Verify(probe, hash) {
		return fmt.Errorf("%w: self-test roundtrip failed", shared.ErrorHashing)
	}
	return nil
}
