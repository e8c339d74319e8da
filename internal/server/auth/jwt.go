package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"credkeeper/internal/server/config"
	"credkeeper/internal/shared"
)

// TokenType discriminates the two signed token kinds. Each type is signed
// with its own secret.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPair bundles a short-lived access token and a long-lived refresh
// token. Pairs are minted fresh on every registration/login and are never
// stored server-side.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Claims carries the registered claims plus the user id and token type.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string    `json:"uid"`
	TokenType TokenType `json:"token_type"`
}

// TokenIssuer mints and verifies HS256-signed token pairs. Verification is
// stateless: validity is purely a function of signature and embedded expiry.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	leeway        time.Duration
}

// NewTokenIssuer constructs a TokenIssuer from server config.
func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		leeway:        cfg.ClockSkew,
	}
}

// Issue returns a fresh TokenPair for the given user id. Every token carries
// a unique jti, so two pairs are never byte-identical even when minted within
// the same second.
func (i *TokenIssuer) Issue(userID string) (*TokenPair, error) {
	access, err := i.sign(userID, TokenTypeAccess, i.accessSecret, i.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refresh, err := i.sign(userID, TokenTypeRefresh, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify validates signature, expiry, and token type, and returns the user id
// embedded in the token. Expired tokens yield shared.ErrorTokenExpired; every
// other failure (bad signature, wrong type, malformed token) yields
// shared.ErrorInvalidToken, so callers can distinguish "re-login" from
// "silent refresh".
func (i *TokenIssuer) Verify(tokenString string, tokenType TokenType) (string, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secretFor(tokenType), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(i.leeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", shared.ErrorTokenExpired
		}
		return "", shared.ErrorInvalidToken
	}

	if claims.TokenType != tokenType || claims.UserID == "" {
		return "", shared.ErrorInvalidToken
	}

	return claims.UserID, nil
}

func (i *TokenIssuer) sign(userID string, tokenType TokenType, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: tokenType,
	})
	return token.SignedString(secret)
}

func (i *TokenIssuer) secretFor(tokenType TokenType) []byte {
	if tokenType == TokenTypeRefresh {
		return i.refreshSecret
	}
	return i.accessSecret
}
