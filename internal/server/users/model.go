package users

import "time"

// User is a stored credential record. Email is persisted in normalized
// (trimmed, lowercased) form and is unique. ResetTokenHash and
// ResetTokenExpiresAt are either both nil (no outstanding reset) or both set;
// the plaintext reset token is never stored.
type User struct {
	ID                  string
	Name                string
	Email               string
	PasswordHash        string
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
