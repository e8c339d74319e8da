// Package shared contains sentinel errors and small helpers used across
// credkeeper components. Callers should use errors.Is to match these values.
package shared

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors.
	ErrorValidation   = errors.New("validation error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorInternal     = errors.New("internal error")

	// Token lifecycle errors.
	ErrorInvalidToken = errors.New("invalid token")
	ErrorTokenExpired = errors.New("token expired")

	// Infrastructure failures; retryable by caller policy.
	ErrorTransient = errors.New("transient failure")

	// Hashing backend failure. Fatal when reproduced by the startup self-test.
	ErrorHashing = errors.New("hashing failure")
)
