package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/logger"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/session"
	"github.com/julianstephens/kairos/internal/validation"
)

// ErrNotSignedIn is returned when an operation needs a signed-in user
var ErrNotSignedIn = errors.New("not signed in, run `kairos login` first")

// Manager ties the provider to the persisted session. It is the token
// source of the API client.
type Manager struct {
	provider *Provider
	stores   *session.Stores

	mu        sync.Mutex
	idToken   string
	expiresAt time.Time
	now       func() time.Time
}

func NewManager(p *Provider, stores *session.Stores) *Manager {
	return &Manager{provider: p, stores: stores, now: time.Now}
}

// Login signs in with email and password
func (m *Manager) Login(ctx context.Context, c validation.Credentials) (*models.UserProfile, error) {
	if err := validation.ValidateCredentials(validation.SignIn, c); err != nil {
		return nil, err
	}
	t, err := m.provider.SignIn(ctx, strings.TrimSpace(c.Email), c.Password)
	if err != nil {
		return nil, err
	}
	if err := m.adopt(t); err != nil {
		return nil, err
	}
	logger.Info("Signed in", "uid", t.UID)
	return m.stores.User.Profile(), nil
}

// Signup creates an account, sets its display name and signs in
func (m *Manager) Signup(ctx context.Context, c validation.Credentials) (*models.UserProfile, error) {
	if err := validation.ValidateCredentials(validation.SignUp, c); err != nil {
		return nil, err
	}
	t, err := m.provider.SignUp(ctx, strings.TrimSpace(c.Email), c.Password)
	if err != nil {
		return nil, err
	}
	named, err := m.provider.UpdateProfile(ctx, t, strings.TrimSpace(c.Username))
	if err != nil {
		// The account exists at this point; keep the session and report
		// the failed name update.
		if adoptErr := m.adopt(t); adoptErr != nil {
			return nil, errors.Join(err, adoptErr)
		}
		return m.stores.User.Profile(), fmt.Errorf("account created but the username could not be set: %w", err)
	}
	if err := m.adopt(named); err != nil {
		return nil, err
	}
	logger.Info("Account created", "uid", named.UID)
	return m.stores.User.Profile(), nil
}

// Logout forgets the cached token and clears both session slices
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.idToken = ""
	m.expiresAt = time.Time{}
	m.mu.Unlock()

	if err := m.stores.SignOut(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// UID returns the signed-in user's id
func (m *Manager) UID() (string, error) {
	if !m.stores.Auth.Authenticated() {
		return "", ErrNotSignedIn
	}
	return m.stores.Auth.State().UID, nil
}

// Profile returns the signed-in user's profile, or nil
func (m *Manager) Profile() *models.UserProfile {
	return m.stores.User.Profile()
}

// OnChange calls fn after every change of the auth state
func (m *Manager) OnChange(fn func(models.AuthState)) func() {
	return m.stores.Auth.Subscribe(fn)
}

// Token returns a valid ID token, refreshing it when it expires within
// constants.TokenRefreshSkew. Concurrent callers share one refresh.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.stores.Auth.Authenticated() {
		return "", ErrNotSignedIn
	}
	if m.idToken != "" && m.now().Add(constants.TokenRefreshSkew).Before(m.expiresAt) {
		return m.idToken, nil
	}

	refresh, err := m.stores.Auth.RefreshToken()
	if err != nil || refresh == "" {
		return "", fmt.Errorf("%w: no refresh token stored", ErrNotSignedIn)
	}

	t, err := m.provider.Refresh(ctx, refresh)
	if err != nil {
		if IsSessionExpired(err) {
			logger.Warn("Refresh token rejected, signing out", "error", err)
			if clearErr := m.stores.SignOut(); clearErr != nil {
				logger.Error("Failed to clear session", "error", clearErr)
			}
			return "", fmt.Errorf("%w: %v", ErrNotSignedIn, err)
		}
		return "", err
	}

	m.idToken = t.IDToken
	m.expiresAt = t.ExpiresAt
	if t.RefreshToken != refresh {
		if err := m.stores.Auth.SetRefreshToken(t.RefreshToken); err != nil {
			logger.Warn("Failed to persist rotated refresh token", "error", err)
		}
	}
	return m.idToken, nil
}

func (m *Manager) adopt(t *Tokens) error {
	m.mu.Lock()
	m.idToken = t.IDToken
	m.expiresAt = t.ExpiresAt
	m.mu.Unlock()

	err := m.stores.SignIn(session.Credentials{
		UID:          t.UID,
		Email:        t.Email,
		DisplayName:  t.DisplayName,
		RefreshToken: t.RefreshToken,
	}, "")
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
