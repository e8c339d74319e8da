// Package users provides the credential record model and its repositories.
package users

import (
	"context"
	"time"
)

// Repository is the user-record store used by the credential service.
// Implementations must make ConsumeResetToken atomic: under concurrent calls
// with the same token at most one may succeed.
type Repository interface {
	// Create persists a new user. Returns shared.ErrorConflict when a user
	// with the same (normalized) email already exists.
	Create(ctx context.Context, user *User) (*User, error)

	// GetByEmail returns the user with the given normalized email, or
	// shared.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// SetResetToken stores the reset token hash and expiry for a user,
	// replacing any outstanding token.
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error

	// ClearResetToken removes any outstanding reset token fields.
	ClearResetToken(ctx context.Context, id string) error

	// ConsumeResetToken atomically finds the user whose stored, non-expired
	// reset token hash matches tokenHash, sets the new password hash, and
	// clears the reset fields. Returns shared.ErrorInvalidToken when no such
	// user exists (wrong token and expired token are indistinguishable).
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*User, error)
}
