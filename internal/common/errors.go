// Package common defines shared constants, sentinel errors and small
// helpers used across the daemon and CLI layers of splvault. Callers should
// use errors.Is to match the sentinel values.
package common

import "errors"

var (

	// store specific errors
	ErrorNotFound = errors.New("not found")

	// auth errors (invalid or malformed token)
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// keystore errors
	ErrorIncorrectPassphrase = errors.New("incorrect passphrase")
)
