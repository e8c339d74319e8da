// Package credentials contains the server-side credential lifecycle logic:
// registration, login, token refresh, and the password-reset flow. It
// orchestrates the hashing/token primitives from the auth package against an
// injected user store and notification sink; it never talks to the transport
// layer directly.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"credkeeper/internal/logging"
	"credkeeper/internal/server/auth"
	"credkeeper/internal/server/config"
	"credkeeper/internal/server/notification"
	"credkeeper/internal/server/users"
	"credkeeper/internal/shared"
)

const (
	minPasswordLength = 6
	// bcrypt only reads the first 72 bytes; longer input is rejected up
	// front instead of surfacing a hashing failure.
	maxPasswordLength = 72
)

// RegisterResult is returned by Register: the stored user plus a fresh token
// pair, so a client is signed in immediately after registration.
type RegisterResult struct {
	User   *users.User
	Tokens *auth.TokenPair
}

// Service implements the credential lifecycle operations.
type Service struct {
	repo        users.Repository
	hasher      *auth.Hasher
	tokens      *auth.TokenIssuer
	reset       *auth.ResetTokenManager
	sink        notification.Sink
	frontendURL string
	logger      logging.Logger
}

// NewService constructs a Service from its collaborators and server config.
func NewService(
	repo users.Repository,
	hasher *auth.Hasher,
	tokens *auth.TokenIssuer,
	reset *auth.ResetTokenManager,
	sink notification.Sink,
	cfg *config.Config,
	logger logging.Logger,
) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		reset:       reset,
		sink:        sink,
		frontendURL: strings.TrimSuffix(cfg.FrontendURL, "/"),
		logger:      logger.With("module", "credentials"),
	}
}

// Register creates a new user and signs them in. Duplicate emails (compared
// case-insensitively) fail with shared.ErrorConflict.
func (s *Service) Register(ctx context.Context, name, email, password string) (*RegisterResult, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, &users.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrorInternal, err)
	}

	return &RegisterResult{User: user, Tokens: pair}, nil
}

// Login verifies credentials and mints a fresh token pair. Unknown email and
// wrong password both yield shared.ErrorUnauthorized so the caller learns
// nothing about which emails are registered.
func (s *Service) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return nil, shared.ErrorUnauthorized
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, shared.ErrorUnauthorized
	}

	pair, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrorInternal, err)
	}
	return pair, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	userID, err := s.tokens.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrorInternal, err)
	}
	return pair, nil
}

// Authenticate verifies an access token and returns the user id it is bound
// to. Used by the HTTP bearer middleware.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (string, error) {
	return s.tokens.Verify(accessToken, auth.TokenTypeAccess)
}

// RequestPasswordReset issues a reset token for the user with the given
// email, persists only its hash and expiry, and discloses the plaintext once
// via the notification sink. If delivery fails the stored fields are rolled
// back so a token the user never received cannot remain valid.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}

	token, err := s.reset.Issue()
	if err != nil {
		return fmt.Errorf("%w: generating reset token: %v", shared.ErrorInternal, err)
	}

	if err := s.repo.SetResetToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token.Plain)
	body := "You requested a password reset. Click here: " + resetURL

	if err := s.sink.Send(ctx, user.Email, "Password Reset Request", body); err != nil {
		// roll back so the undelivered token cannot be consumed
		if clearErr := s.repo.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.logger.Error(ctx, "failed to roll back reset token", "user_id", user.ID, "error", clearErr.Error())
		}
		return fmt.Errorf("%w: delivering reset email: %v", shared.ErrorTransient, err)
	}

	s.logger.Info(ctx, "reset email sent", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset token: it locates the user by the token's
// hash, stores the new password hash, and clears the reset fields in a single
// atomic update. Wrong and expired tokens are indistinguishable; both fail
// with shared.ErrorInvalidToken.
func (s *Service) ResetPassword(ctx context.Context, plainToken, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user, err := s.repo.ConsumeResetToken(ctx, s.reset.HashToken(plainToken), newHash)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

// NormalizeEmail lowercases and trims an email address. All lookups and
// stored records use the normalized form, so addresses differing only in
// case collide.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email", shared.ErrorValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", shared.ErrorValidation, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", shared.ErrorValidation, maxPasswordLength)
	}
	return nil
}
