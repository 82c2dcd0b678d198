package credentials

import (
	"context"

	"github.com/draytht/lvsk-calendar-extended/internal/models"
)

// Repository describes storage operations for OAuth credentials.
// One row per provider.
type Repository interface {
	// Save upserts the credential for its provider. The refresh token is
	// only overwritten when the new value is non-empty; the access token
	// and expiry always are. Token endpoints may omit the refresh token
	// on renewal and the stored one must survive that.
	Save(ctx context.Context, c *models.Credential) error

	// Get returns the credential for a provider, or common.ErrNotFound.
	Get(ctx context.Context, provider string) (*models.Credential, error)
}
