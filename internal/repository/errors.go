package repository

import "errors"

// Business-rule and lookup failures surfaced by the store. Services and
// handlers match these with errors.Is.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already registered")
	ErrCodeNotFound  = errors.New("pair code does not exist or is invalid")
	ErrCodeConsumed  = errors.New("pair code has already been used")
	ErrAlreadyPaired = errors.New("user is already paired")
	ErrSelfPair      = errors.New("cannot pair with yourself")
	ErrPairCodeTaken = errors.New("pair code is already held by a waiting user")
)
