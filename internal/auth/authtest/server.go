// Package authtest provides an in-memory identity provider for tests.
package authtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const APIKey = "test-api-key"

type account struct {
	uid         string
	email       string
	password    string
	displayName string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*account // by email
	refresh  map[string]string   // refresh token -> uid
	calls    map[string]int

	// TokenLifetime is the validity of issued ID tokens
	TokenLifetime time.Duration
	// RotateRefresh issues a new refresh token on every refresh
	RotateRefresh bool
}

func NewServer(t testing.TB) *Server {
	s := &Server{
		accounts:      map[string]*account{},
		refresh:       map[string]string{},
		calls:         map[string]int{},
		TokenLifetime: time.Hour,
	}
	r := mux.NewRouter()
	r.HandleFunc("/v1/accounts:signInWithPassword", s.signIn).Methods("POST")
	r.HandleFunc("/v1/accounts:signUp", s.signUp).Methods("POST")
	r.HandleFunc("/v1/accounts:update", s.update).Methods("POST")
	r.HandleFunc("/v1/token", s.token).Methods("POST")
	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the identity toolkit root
func (s *Server) BaseURL() string { return s.URL + "/v1" }

// TokenURL is the secure token endpoint
func (s *Server) TokenURL() string { return s.URL + "/v1/token" }

// AddUser registers an account and returns its uid
func (s *Server) AddUser(email, password, displayName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &account{uid: uuid.NewString(), email: email, password: password, displayName: displayName}
	s.accounts[email] = a
	return a.uid
}

// RevokeAll invalidates every refresh token
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = map[string]string{}
}

// Calls returns how often the named endpoint was hit
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// IDToken issues a signed ID token for uid
func (s *Server) IDToken(uid, email, name string, lifetime time.Duration) string {
	claims := jwt.MapClaims{
		"user_id": uid,
		"sub":     uid,
		"email":   email,
		"exp":     time.Now().Add(lifetime).Unix(),
		"iat":     time.Now().Unix(),
	}
	if name != "" {
		claims["name"] = name
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("authtest"))
	if err != nil {
		panic(err)
	}
	return token
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	IDToken     string `json:"idToken"`
	DisplayName string `json:"displayName"`
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.begin(w, r, "signIn", &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[req.Email]
	if !ok || a.password != req.Password {
		writeError(w, "INVALID_LOGIN_CREDENTIALS")
		return
	}
	s.writeAccount(w, a)
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.begin(w, r, "signUp", &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		writeError(w, "EMAIL_EXISTS")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, "WEAK_PASSWORD : Password should be at least 6 characters")
		return
	}
	a := &account{uid: uuid.NewString(), email: req.Email, password: req.Password}
	s.accounts[req.Email] = a
	s.writeAccount(w, a)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.begin(w, r, "update", &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	token, _, err := jwt.NewParser().ParseUnverified(req.IDToken, jwt.MapClaims{})
	if err != nil {
		writeError(w, "INVALID_ID_TOKEN")
		return
	}
	email, _ := token.Claims.(jwt.MapClaims)["email"].(string)
	a, ok := s.accounts[email]
	if !ok {
		writeError(w, "USER_NOT_FOUND")
		return
	}
	a.displayName = req.DisplayName
	writeJSON(w, map[string]any{
		"localId":     a.uid,
		"email":       a.email,
		"displayName": a.displayName,
	})
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("key") != APIKey {
		writeError(w, "API_KEY_INVALID")
		return
	}
	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "refresh_token" {
		writeError(w, "INVALID_GRANT_TYPE")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["token"]++

	rt := r.PostForm.Get("refresh_token")
	uid, ok := s.refresh[rt]
	if !ok {
		writeError(w, "INVALID_REFRESH_TOKEN")
		return
	}
	var a *account
	for _, acc := range s.accounts {
		if acc.uid == uid {
			a = acc
		}
	}
	if a == nil {
		writeError(w, "USER_NOT_FOUND")
		return
	}
	if s.RotateRefresh {
		delete(s.refresh, rt)
		rt = uuid.NewString()
		s.refresh[rt] = uid
	}
	writeJSON(w, map[string]any{
		"id_token":      s.IDToken(a.uid, a.email, a.displayName, s.TokenLifetime),
		"refresh_token": rt,
		"expires_in":    strconv.Itoa(int(s.TokenLifetime.Seconds())),
		"user_id":       a.uid,
		"token_type":    "Bearer",
	})
}

func (s *Server) begin(w http.ResponseWriter, r *http.Request, endpoint string, req *credentialsRequest) bool {
	if r.URL.Query().Get("key") != APIKey {
		writeError(w, "API_KEY_INVALID")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, "INVALID_JSON")
		return false
	}
	s.mu.Lock()
	s.calls[endpoint]++
	s.mu.Unlock()
	return true
}

// writeAccount must be called with s.mu held
func (s *Server) writeAccount(w http.ResponseWriter, a *account) {
	rt := uuid.NewString()
	s.refresh[rt] = a.uid
	body := map[string]any{
		"idToken":      s.IDToken(a.uid, a.email, a.displayName, s.TokenLifetime),
		"refreshToken": rt,
		"expiresIn":    strconv.Itoa(int(s.TokenLifetime.Seconds())),
		"localId":      a.uid,
		"email":        a.email,
	}
	if a.displayName != "" {
		body["displayName"] = a.displayName
	}
	writeJSON(w, body)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string) {
	code := http.StatusBadRequest
	if strings.HasPrefix(message, "API_KEY") {
		code = http.StatusForbidden
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, code, message)
}
