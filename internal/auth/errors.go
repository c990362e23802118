package auth

import "errors"

var (
	ErrInvalidPIN   = errors.New("auth: invalid pin")
	ErrUnauthorized = errors.New("auth: unauthorized")
)
