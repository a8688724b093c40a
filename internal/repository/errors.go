package repository

import "errors"

var (
	// ErrUserNotFound indicates that no account matched the lookup
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateKey indicates that the username or email is already taken
	ErrDuplicateKey = errors.New("username or email already exists")
)
