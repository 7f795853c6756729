package auth

import "errors"

var (
	// ErrInvalidToken indicates the token is malformed, has a bad signature,
	// or otherwise failed validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token was valid but has expired.
	ErrExpiredToken = errors.New("token expired")
)
