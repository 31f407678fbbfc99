package auth_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/kairos/internal/api"
	"github.com/julianstephens/kairos/internal/auth"
	"github.com/julianstephens/kairos/internal/auth/authtest"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/session"
	"github.com/julianstephens/kairos/internal/storage/sqlite"
	"github.com/julianstephens/kairos/internal/validation"
)

var _ api.TokenSource = (*auth.Manager)(nil)

func setup(t *testing.T) (*authtest.Server, *auth.Manager, *session.Stores) {
	t.Helper()
	idp := authtest.NewServer(t)

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "kairos.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	stores, err := session.Open(store, nil)
	if err != nil {
		t.Fatalf("session.Open() error = %v", err)
	}
	p, err := auth.NewProvider(auth.ProviderConfig{APIKey: authtest.APIKey, BaseURL: idp.BaseURL(), TokenURL: idp.TokenURL()})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	return idp, auth.NewManager(p, stores), stores
}

func TestNewProviderRequiresKey(t *testing.T) {
	if _, err := auth.NewProvider(auth.ProviderConfig{}); err == nil {
		t.Error("NewProvider() without API key expected error")
	}
}

func TestLogin(t *testing.T) {
	idp, m, stores := setup(t)
	uid := idp.AddUser("ana@example.com", "secret1", "Ana")

	profile, err := m.Login(context.Background(), validation.Credentials{Email: " ana@example.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if profile == nil || profile.UID != uid || profile.DisplayName != "Ana" || profile.Email != "ana@example.com" {
		t.Errorf("Login() profile = %+v", profile)
	}

	state := stores.Auth.State()
	if state.Status != models.AuthAuthenticated || state.UID != uid || state.RefreshToken == "" {
		t.Errorf("auth state = %+v", state)
	}
	if got, err := m.UID(); err != nil || got != uid {
		t.Errorf("UID() = %q, %v, want %q", got, err, uid)
	}
}

func TestLoginErrors(t *testing.T) {
	idp, m, stores := setup(t)
	idp.AddUser("ana@example.com", "secret1", "Ana")

	_, err := m.Login(context.Background(), validation.Credentials{Email: "ana@example.com"})
	if err == nil || err.Error() != "Please fill in all fields" {
		t.Errorf("Login() with empty password error = %v", err)
	}
	if idp.Calls("signIn") != 0 {
		t.Error("expected validation to fail before calling the provider")
	}

	_, err = m.Login(context.Background(), validation.Credentials{Email: "ana@example.com", Password: "wrong"})
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		t.Fatalf("Login() error = %v, want *auth.Error", err)
	}
	if authErr.Code != "INVALID_LOGIN_CREDENTIALS" || authErr.Error() != "Invalid email or password" {
		t.Errorf("auth error = %+v", authErr)
	}
	if stores.Auth.Authenticated() {
		t.Error("failed login must not authenticate")
	}
	if _, err := m.UID(); !errors.Is(err, auth.ErrNotSignedIn) {
		t.Errorf("UID() error = %v, want ErrNotSignedIn", err)
	}
}

func TestSignup(t *testing.T) {
	idp, m, stores := setup(t)

	creds := validation.Credentials{Email: "bo@example.com", Password: "secret1", ConfirmPassword: "secret1", Username: " Bo "}
	profile, err := m.Signup(context.Background(), creds)
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if profile.DisplayName != "Bo" {
		t.Errorf("DisplayName = %q, want %q", profile.DisplayName, "Bo")
	}
	if stores.Auth.State().DisplayName != "Bo" {
		t.Errorf("auth slice display name = %q, want Bo", stores.Auth.State().DisplayName)
	}
	if idp.Calls("signUp") != 1 || idp.Calls("update") != 1 {
		t.Errorf("provider calls signUp=%d update=%d, want 1 each", idp.Calls("signUp"), idp.Calls("update"))
	}

	_, err = m.Signup(context.Background(), creds)
	var authErr *auth.Error
	if !errors.As(err, &authErr) || authErr.Code != "EMAIL_EXISTS" {
		t.Errorf("second Signup() error = %v, want EMAIL_EXISTS", err)
	}
}

func TestSignupValidation(t *testing.T) {
	idp, m, _ := setup(t)
	_, err := m.Signup(context.Background(), validation.Credentials{Email: "bo@example.com", Password: "secret1", ConfirmPassword: "secret2", Username: "Bo"})
	if err == nil || err.Error() != "Passwords do not match" {
		t.Errorf("Signup() error = %v, want mismatch", err)
	}
	if idp.Calls("signUp") != 0 {
		t.Error("expected no provider call")
	}
}

func TestTokenCachesUntilSkew(t *testing.T) {
	idp, m, _ := setup(t)
	idp.AddUser("ana@example.com", "secret1", "Ana")
	if _, err := m.Login(context.Background(), validation.Credentials{Email: "ana@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	first, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	second, _ := m.Token(context.Background())
	if first != second || idp.Calls("token") != 0 {
		t.Errorf("expected the sign-in token to be reused, refreshes = %d", idp.Calls("token"))
	}
}

func TestTokenRefreshes(t *testing.T) {
	idp, m, stores := setup(t)
	idp.TokenLifetime = 30 * time.Second // inside the refresh skew
	idp.RotateRefresh = true
	uid := idp.AddUser("ana@example.com", "secret1", "Ana")
	if _, err := m.Login(context.Background(), validation.Credentials{Email: "ana@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	oldRefresh := stores.Auth.State().RefreshToken

	token, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if idp.Calls("token") != 1 {
		t.Errorf("refreshes = %d, want 1", idp.Calls("token"))
	}
	claims, err := auth.ParseClaims(token)
	if err != nil || claims.UID != uid {
		t.Errorf("ParseClaims() = %+v, %v", claims, err)
	}
	if got := stores.Auth.State().RefreshToken; got == oldRefresh || got == "" {
		t.Errorf("expected rotated refresh token to be persisted, got %q", got)
	}
}

func TestTokenRevokedSignsOut(t *testing.T) {
	idp, m, stores := setup(t)
	idp.TokenLifetime = 30 * time.Second
	idp.AddUser("ana@example.com", "secret1", "Ana")
	if _, err := m.Login(context.Background(), validation.Credentials{Email: "ana@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	var seen []models.AuthStatus
	unsubscribe := m.OnChange(func(s models.AuthState) { seen = append(seen, s.Status) })
	defer unsubscribe()

	idp.RevokeAll()
	if _, err := m.Token(context.Background()); !errors.Is(err, auth.ErrNotSignedIn) {
		t.Fatalf("Token() error = %v, want ErrNotSignedIn", err)
	}
	if stores.Auth.State().Status != models.AuthUnauthenticated {
		t.Errorf("status = %q, want unauthenticated", stores.Auth.State().Status)
	}
	if stores.User.Profile() != nil {
		t.Error("expected profile to be cleared")
	}
	if len(seen) == 0 || seen[len(seen)-1] != models.AuthUnauthenticated {
		t.Errorf("OnChange saw %v", seen)
	}
}

func TestLogout(t *testing.T) {
	idp, m, stores := setup(t)
	idp.AddUser("ana@example.com", "secret1", "Ana")
	if _, err := m.Login(context.Background(), validation.Credentials{Email: "ana@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := m.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if stores.Auth.Authenticated() || m.Profile() != nil {
		t.Error("expected session to be cleared")
	}
	if _, err := m.Token(context.Background()); !errors.Is(err, auth.ErrNotSignedIn) {
		t.Errorf("Token() after logout error = %v, want ErrNotSignedIn", err)
	}
}

func TestParseClaims(t *testing.T) {
	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	exp := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		token   string
		wantUID string
		wantErr bool
	}{
		{"user_id claim", sign(jwt.MapClaims{"user_id": "u1", "sub": "other", "exp": exp.Unix()}), "u1", false},
		{"sub fallback", sign(jwt.MapClaims{"sub": "u2", "email": "x@y.z"}), "u2", false},
		{"no subject", sign(jwt.MapClaims{"email": "x@y.z"}), "", true},
		{"garbage", "not-a-jwt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := auth.ParseClaims(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClaims() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.UID != tt.wantUID {
				t.Errorf("ParseClaims() UID = %q, want %q", c.UID, tt.wantUID)
			}
		})
	}

	c, _ := auth.ParseClaims(sign(jwt.MapClaims{"user_id": "u1", "exp": exp.Unix(), "name": "Ana"}))
	if !c.ExpiresAt.Equal(exp) || c.Name != "Ana" {
		t.Errorf("ParseClaims() = %+v, want exp %v and name Ana", c, exp)
	}
}
