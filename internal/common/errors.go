package common

import "errors"

// Callers match these with errors.Is.
var (
	// Token store errors.
	ErrNoToken = errors.New("no access token")

	// Identity errors.
	ErrNoSession = errors.New("no session")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
