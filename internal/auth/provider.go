// Package auth signs users in against an identity-toolkit compatible REST
// provider and keeps their ID token fresh.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/logger"
)

// Error is a failed provider call. Message is suitable for display.
type Error struct {
	Op      string
	Status  int
	Code    string // provider reason, e.g. EMAIL_EXISTS
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var friendlyMessages = map[string]string{
	"EMAIL_EXISTS":                "An account with this email already exists",
	"EMAIL_NOT_FOUND":             "Invalid email or password",
	"INVALID_PASSWORD":            "Invalid email or password",
	"INVALID_LOGIN_CREDENTIALS":   "Invalid email or password",
	"INVALID_EMAIL":               "Invalid email address",
	"WEAK_PASSWORD":               "Password must be at least 6 characters long",
	"USER_DISABLED":               "This account has been disabled",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many attempts, please try again later",
	"OPERATION_NOT_ALLOWED":       "Email sign-in is disabled for this project",
	"TOKEN_EXPIRED":               "Your session has expired, please log in again",
	"INVALID_REFRESH_TOKEN":       "Your session has expired, please log in again",
	"INVALID_ID_TOKEN":            "Your session has expired, please log in again",
	"USER_NOT_FOUND":              "Your session has expired, please log in again",
}

// IsSessionExpired reports whether err means the refresh token can no longer be used
func IsSessionExpired(err error) bool {
	var authErr *Error
	if !errors.As(err, &authErr) {
		return false
	}
	switch authErr.Code {
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "INVALID_ID_TOKEN", "USER_NOT_FOUND", "USER_DISABLED":
		return true
	}
	return false
}

// Tokens is the result of a sign-in, sign-up or refresh
type Tokens struct {
	IDToken      string
	RefreshToken string
	UID          string
	Email        string
	DisplayName  string
	ExpiresAt    time.Time
}

type ProviderConfig struct {
	APIKey     string
	BaseURL    string // identity toolkit root, e.g. https://identitytoolkit.googleapis.com/v1
	TokenURL   string // secure token endpoint
	HTTPClient *http.Client
}

type Provider struct {
	cfg  ProviderConfig
	http *http.Client
	now  func() time.Time
	log  *log.Logger
}

// NewProvider returns a provider client. The API key is required.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("auth API key is not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultAuthBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = constants.DefaultTokenURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}
	return &Provider{cfg: cfg, http: hc, now: time.Now, log: logger.With("auth")}, nil
}

type accountResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

type tokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn exchanges email and password for tokens
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Tokens, error) {
	body := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	var out accountResponse
	if err := p.postJSON(ctx, "SignIn", "accounts:signInWithPassword", body, &out); err != nil {
		return nil, err
	}
	return p.fromAccount(out), nil
}

// SignUp creates an account and returns its tokens
func (p *Provider) SignUp(ctx context.Context, email, password string) (*Tokens, error) {
	body := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	var out accountResponse
	if err := p.postJSON(ctx, "SignUp", "accounts:signUp", body, &out); err != nil {
		return nil, err
	}
	return p.fromAccount(out), nil
}

// UpdateProfile sets the display name of the account owning idToken. The
// returned tokens carry the new name; fields the provider does not echo are
// copied from current.
func (p *Provider) UpdateProfile(ctx context.Context, current *Tokens, displayName string) (*Tokens, error) {
	body := map[string]any{"idToken": current.IDToken, "displayName": displayName, "returnSecureToken": true}
	var out accountResponse
	if err := p.postJSON(ctx, "UpdateProfile", "accounts:update", body, &out); err != nil {
		return nil, err
	}

	updated := *current
	if t := p.fromAccount(out); t.IDToken != "" {
		updated.IDToken = t.IDToken
		updated.ExpiresAt = t.ExpiresAt
		if t.RefreshToken != "" {
			updated.RefreshToken = t.RefreshToken
		}
	}
	updated.DisplayName = displayName
	if out.DisplayName != "" {
		updated.DisplayName = out.DisplayName
	}
	return &updated, nil
}

// Refresh trades a refresh token for a new ID token
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	var out tokenResponse
	if err := p.post(ctx, "Refresh", p.withKey(p.cfg.TokenURL), "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &out); err != nil {
		return nil, err
	}

	t := &Tokens{
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		UID:          out.UserID,
		ExpiresAt:    p.expiry(out.ExpiresIn),
	}
	if t.RefreshToken == "" {
		t.RefreshToken = refreshToken
	}
	p.fillFromClaims(t)
	return t, nil
}

func (p *Provider) fromAccount(a accountResponse) *Tokens {
	t := &Tokens{
		IDToken:      a.IDToken,
		RefreshToken: a.RefreshToken,
		UID:          a.LocalID,
		Email:        a.Email,
		DisplayName:  a.DisplayName,
		ExpiresAt:    p.expiry(a.ExpiresIn),
	}
	p.fillFromClaims(t)
	return t
}

// fillFromClaims completes missing fields from the ID token claims
func (p *Provider) fillFromClaims(t *Tokens) {
	if t.IDToken == "" {
		return
	}
	claims, err := ParseClaims(t.IDToken)
	if err != nil {
		p.log.Debug("ID token claims unreadable", "error", err)
		return
	}
	if t.UID == "" {
		t.UID = claims.UID
	}
	if t.Email == "" {
		t.Email = claims.Email
	}
	if t.DisplayName == "" {
		t.DisplayName = claims.Name
	}
	if !claims.ExpiresAt.IsZero() {
		t.ExpiresAt = claims.ExpiresAt
	}
}

func (p *Provider) expiry(expiresIn string) time.Time {
	secs, err := strconv.Atoi(expiresIn)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return p.now().Add(time.Duration(secs) * time.Second)
}

func (p *Provider) withKey(endpoint string) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "key=" + url.QueryEscape(p.cfg.APIKey)
}

func (p *Provider) postJSON(ctx context.Context, op, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: failed to encode request: %w", op, err)
	}
	endpoint := p.withKey(p.cfg.BaseURL + "/" + method)
	return p.post(ctx, op, endpoint, "application/json", bytes.NewReader(payload), out)
}

func (p *Provider) post(ctx context.Context, op, endpoint, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := p.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &Error{Op: op, Message: fmt.Sprintf("Could not reach the sign-in service: %v", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}
	p.log.Debug("provider call", "op", op, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return providerError(op, resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

// providerError maps {"error":{"code","message"}} to a friendly *Error.
// Messages may carry details after the code, as in "WEAK_PASSWORD : ...".
func providerError(op string, status int, data []byte) *Error {
	var er errorResponse
	code := ""
	if json.Unmarshal(data, &er) == nil {
		code = strings.TrimSpace(strings.SplitN(er.Error.Message, ":", 2)[0])
	}
	msg, ok := friendlyMessages[code]
	if !ok {
		msg = er.Error.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
	}
	return &Error{Op: op, Status: status, Code: code, Message: msg}
}
