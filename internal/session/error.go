package session

import "errors"

var (
	ErrTokenExpired     = errors.New("stored token has expired")
	ErrNotAuthenticated = errors.New("no active session")
)
