// Package auth owns the OAuth token lifecycle: exchanging the initial
// authorization code, adopting stored credentials, and refreshing expired
// ones. Tokens are always persisted before they are handed out.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/draytht/lvsk-calendar-extended/internal/common"
	"github.com/draytht/lvsk-calendar-extended/internal/logging"
	"github.com/draytht/lvsk-calendar-extended/internal/models"
	"github.com/draytht/lvsk-calendar-extended/internal/repositories/credentials"
)

// expiryMargin is shaved off token lifetimes at save time so a token is
// never presented right at its deadline.
const expiryMargin = 60 * time.Second

// Manager resolves a usable access token through a fixed chain: the
// in-memory token, then the stored credential, then a refresh. When the
// chain is exhausted it reports common.ErrNotAuthenticated and the caller
// has to run the consent flow again.
type Manager struct {
	cfg   *oauth2.Config
	creds credentials.Repository
	log   logging.Logger

	mu    sync.Mutex
	token *oauth2.Token // expiry already margin-adjusted
}

func NewManager(cfg *oauth2.Config, creds credentials.Repository, log logging.Logger) *Manager {
	return &Manager{cfg: cfg, creds: creds, log: log}
}

// EnsureAuthenticated returns a valid access token or
// common.ErrNotAuthenticated. At most one refresh call is made per
// invocation.
func (m *Manager) EnsureAuthenticated(ctx context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureLocked(ctx)
}

func (m *Manager) ensureLocked(ctx context.Context) (*oauth2.Token, error) {
	// An in-memory token without an expiry never goes stale.
	if m.token != nil && (m.token.Expiry.IsZero() || time.Now().Before(m.token.Expiry)) {
		return m.token, nil
	}

	cred, err := m.creds.Get(ctx, models.ProviderGoogle)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	// A stored credential without an expiry is treated as stale; there
	// is no way to tell how old it is.
	if !cred.ExpiresAt.IsZero() && time.Now().Before(cred.ExpiresAt) {
		m.token = &oauth2.Token{
			AccessToken:  cred.AccessToken,
			RefreshToken: cred.RefreshToken,
			Expiry:       cred.ExpiresAt,
		}
		return m.token, nil
	}

	if cred.RefreshToken == "" {
		return nil, common.ErrNotAuthenticated
	}
	return m.refreshLocked(ctx, cred.RefreshToken)
}

func (m *Manager) refreshLocked(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := m.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		m.log.Warn(ctx, "token refresh failed", "error", err)
		return nil, fmt.Errorf("%w: refresh failed: %v", common.ErrNotAuthenticated, err)
	}

	m.log.Info(ctx, "access token refreshed")
	return m.storeLocked(ctx, tok)
}

// ExchangeCode trades an authorization code for tokens and persists them.
func (m *Manager) ExchangeCode(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tok, err := m.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if _, err := m.storeLocked(ctx, tok); err != nil {
		return err
	}
	m.log.Info(ctx, "authorization code exchanged")
	return nil
}

// storeLocked persists the token and only then adopts it in memory, so a
// crash cannot leave a token that was used but never saved.
func (m *Manager) storeLocked(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	expiry := tok.Expiry
	if !expiry.IsZero() {
		expiry = expiry.Add(-expiryMargin).UTC().Truncate(time.Second)
	}

	cred := &models.Credential{
		Provider:     models.ProviderGoogle,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiry,
	}
	if err := m.creds.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	m.token = &oauth2.Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       expiry,
	}
	return m.token, nil
}

// TokenSource adapts the manager to oauth2.TokenSource so the API HTTP
// client walks the ensure chain whenever it needs a fresh token.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managerSource{ctx: ctx, m: m}
}

type managerSource struct {
	ctx context.Context
	m   *Manager
}

func (s *managerSource) Token() (*oauth2.Token, error) {
	return s.m.EnsureAuthenticated(s.ctx)
}
