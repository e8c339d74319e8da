package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"credkeeper/internal/shared"
)

// resetTokenBytes is the amount of randomness in a reset token: 32 bytes
// (256 bits), hex encoded to 64 characters.
const resetTokenBytes = 32

// ResetToken is the result of issuing a password-reset token. Only Hash and
// ExpiresAt may be persisted; Plain is disclosed once to the notification
// sink and must be unrecoverable from stored state.
type ResetToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

// ResetTokenManager generates and validates single-use, time-limited
// password-reset tokens. The token itself carries full entropy, so a fast
// cryptographic hash (sha256) is enough here, unlike user-chosen passwords.
type ResetTokenManager struct {
	ttl time.Duration
}

func NewResetTokenManager(ttl time.Duration) *ResetTokenManager {
	return &ResetTokenManager{ttl: ttl}
}

// Issue generates a fresh random token, its hash, and the expiry timestamp.
func (m *ResetTokenManager) Issue() (*ResetToken, error) {
	plain, err := shared.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return nil, err
	}
	return &ResetToken{
		Plain:     plain,
		Hash:      m.HashToken(plain),
		ExpiresAt: time.Now().Add(m.ttl),
	}, nil
}

// HashToken returns the hex sha256 digest of a plaintext token. The stored
// lookup column holds this value, never the plaintext.
func (m *ResetTokenManager) HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// Validate reports whether the presented token matches the stored hash and
// has not expired. It deliberately returns a single boolean: callers cannot
// tell a wrong token from an expired one.
func (m *ResetTokenManager) Validate(plain, storedHash string, storedExpiresAt time.Time) bool {
	computed := m.HashToken(plain)
	match := subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
	return match && time.Now().Before(storedExpiresAt)
}
