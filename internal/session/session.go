// Package session holds the persisted auth and user profile slices.
//
// The two slices are independent: signing out clears both, but each one is
// hydrated, written and reset on its own.
package session

import (
	"errors"
	"fmt"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/keyring"
	"github.com/julianstephens/kairos/internal/logger"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/storage"
)

// Vault keeps the refresh token outside the persisted slice
type Vault interface {
	GetRefreshToken() (string, error)
	SetRefreshToken(token string) error
	DeleteRefreshToken() error
}

type keyringVault struct{}

func (keyringVault) GetRefreshToken() (string, error) { return keyring.GetRefreshToken() }
func (keyringVault) SetRefreshToken(t string) error    { return keyring.SetRefreshToken(t) }
func (keyringVault) DeleteRefreshToken() error         { return keyring.DeleteRefreshToken() }

// KeyringVault returns the OS keyring vault, or nil when no keyring is available
func KeyringVault() Vault {
	if !keyring.IsAvailable() {
		return nil
	}
	return keyringVault{}
}

// Credentials is what the identity provider reports after sign-in
type Credentials struct {
	UID          string
	Email        string
	DisplayName  string
	RefreshToken string
}

// AuthStore is the persisted auth slice
type AuthStore struct {
	slice *storage.Slice[models.AuthState]
	vault Vault
}

// NewAuthStore returns an auth store backed by p. When vault is non-nil the
// refresh token is kept there instead of in the slice.
func NewAuthStore(p storage.Provider, vault Vault) *AuthStore {
	return &AuthStore{
		slice: storage.NewSlice(p, constants.AuthStoreName, models.AuthState{Status: models.AuthIdle}),
		vault: vault,
	}
}

func (a *AuthStore) Hydrate() error {
	return a.slice.Hydrate()
}

// State returns the current auth state
func (a *AuthStore) State() models.AuthState {
	return a.slice.Get()
}

// Authenticated reports whether a user is signed in
func (a *AuthStore) Authenticated() bool {
	s := a.slice.Get()
	return s.Status == models.AuthAuthenticated && s.UID != ""
}

// SetAuthFromProvider records a signed-in user
func (a *AuthStore) SetAuthFromProvider(c Credentials) error {
	if c.UID == "" {
		return errors.New("provider user has no uid")
	}

	stored := c.RefreshToken
	if a.vault != nil && c.RefreshToken != "" {
		if err := a.vault.SetRefreshToken(c.RefreshToken); err != nil {
			logger.Warn("Keyring unavailable, keeping refresh token in session store", "error", err)
		} else {
			stored = ""
		}
	}

	return a.slice.Set(models.AuthState{
		Status:       models.AuthAuthenticated,
		RefreshToken: stored,
		UID:          c.UID,
		Email:        c.Email,
		DisplayName:  c.DisplayName,
	})
}

// SetRefreshToken replaces the refresh token of the current session
func (a *AuthStore) SetRefreshToken(token string) error {
	if a.vault != nil {
		if err := a.vault.SetRefreshToken(token); err == nil {
			return a.slice.Update(func(s *models.AuthState) { s.RefreshToken = "" })
		}
	}
	return a.slice.Update(func(s *models.AuthState) { s.RefreshToken = token })
}

// RefreshToken returns the refresh token of the current session
func (a *AuthStore) RefreshToken() (string, error) {
	if t := a.slice.Get().RefreshToken; t != "" {
		return t, nil
	}
	if a.vault == nil {
		return "", keyring.ErrNotFound
	}
	return a.vault.GetRefreshToken()
}

// Clear signs the user out locally: status becomes unauthenticated and
// every other field is emptied.
func (a *AuthStore) Clear() error {
	if a.vault != nil {
		if err := a.vault.DeleteRefreshToken(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Failed to remove refresh token from keyring", "error", err)
		}
	}
	return a.slice.Set(models.AuthState{Status: models.AuthUnauthenticated})
}

// Subscribe calls fn after every change of the auth state
func (a *AuthStore) Subscribe(fn func(models.AuthState)) func() {
	return a.slice.Subscribe(fn)
}

// UserStore is the persisted user profile slice
type UserStore struct {
	slice *storage.Slice[models.UserState]
}

func NewUserStore(p storage.Provider) *UserStore {
	return &UserStore{
		slice: storage.NewSlice(p, constants.UserStoreName, models.UserState{}),
	}
}

func (u *UserStore) Hydrate() error {
	return u.slice.Hydrate()
}

// Profile returns a copy of the stored profile, or nil
func (u *UserStore) Profile() *models.UserProfile {
	p := u.slice.Get().Profile
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

// SetProfile replaces the stored profile; nil clears it
func (u *UserStore) SetProfile(p *models.UserProfile) error {
	var stored *models.UserProfile
	if p != nil {
		cp := *p
		stored = &cp
	}
	return u.slice.Set(models.UserState{Profile: stored})
}

func (u *UserStore) Clear() error {
	return u.slice.Set(models.UserState{})
}

// Subscribe calls fn after every change of the profile
func (u *UserStore) Subscribe(fn func(*models.UserProfile)) func() {
	return u.slice.Subscribe(func(s models.UserState) { fn(s.Profile) })
}

// Stores bundles the two slices of a session
type Stores struct {
	Auth *AuthStore
	User *UserStore
}

// Open hydrates both slices from p
func Open(p storage.Provider, vault Vault) (*Stores, error) {
	s := &Stores{
		Auth: NewAuthStore(p, vault),
		User: NewUserStore(p),
	}
	if err := s.Auth.Hydrate(); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if err := s.User.Hydrate(); err != nil {
		return nil, fmt.Errorf("failed to restore profile: %w", err)
	}
	return s, nil
}

// SignIn updates both slices for a signed-in user
func (s *Stores) SignIn(c Credentials, photoURL string) error {
	if err := s.Auth.SetAuthFromProvider(c); err != nil {
		return err
	}
	return s.User.SetProfile(&models.UserProfile{
		UID:         c.UID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		PhotoURL:    photoURL,
	})
}

// SignOut clears both slices
func (s *Stores) SignOut() error {
	return errors.Join(s.Auth.Clear(), s.User.Clear())
}
