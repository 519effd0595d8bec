// Package common holds sentinel errors shared across the engagement and
// notification services. Handlers map these to HTTP status codes with errors.Is.
package common

import "errors"

var (
	// ErrUnauthenticated means no credential was presented at connection time.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidToken means the presented credential failed signature or expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotFound means the referenced article or notification does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller is acting on another user's resource.
	ErrForbidden = errors.New("forbidden")
	// ErrPersistence means the durable store rejected or failed the write.
	ErrPersistence = errors.New("persistence failure")
)
