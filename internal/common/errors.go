// Package common defines shared sentinel errors used across the lvsk
// storage, auth, and sync layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Auth errors: no usable credential, or the refresh path failed.
	// A sync pass stops before any remote call when it sees this.
	ErrNotAuthenticated = errors.New("not authenticated")

	// Config/bootstrap errors.
	ErrMissingClientCredentials = errors.New("google client id/secret not configured")
)
