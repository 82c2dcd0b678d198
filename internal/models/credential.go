package models

import "time"

// ProviderGoogle is the provider key of the one supported remote service.
const ProviderGoogle = "google"

// Credential is the stored OAuth2 token set for a provider. Exactly one
// row exists per provider: created on first authorization, updated on
// every refresh, never deleted.
type Credential struct {
	Provider    string
	AccessToken string

	// RefreshToken is optional; without it an expired credential can only
	// be recovered by re-authorizing.
	RefreshToken string

	// ExpiresAt is the stored expiry with the safety margin already
	// applied. The zero value means the provider reported no expiry; a
	// stored credential without one is treated as stale.
	ExpiresAt time.Time
}
