package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid staff id or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)
