// Package clitest builds command contexts wired to fake backends.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/kairos/internal/api/apitest"
	"github.com/julianstephens/kairos/internal/auth/authtest"
	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/config"
	"github.com/julianstephens/kairos/internal/metrics"
	"github.com/julianstephens/kairos/internal/storage/sqlite"
	"github.com/julianstephens/kairos/internal/validation"
)

// Now is the fixed clock of test contexts: Saturday 2025-08-16 10:00 UTC
var Now = time.Date(2025, time.August, 16, 10, 0, 0, 0, time.UTC)

type Env struct {
	Ctx *cli.Context
	API *apitest.Server
	IDP *authtest.Server
	Out *bytes.Buffer
}

// New returns a context backed by a fresh SQLite store, the fake backend
// and the fake identity provider. Nobody is signed in.
func New(t *testing.T) *Env {
	t.Helper()
	dir := t.TempDir()

	store := sqlite.NewStore(filepath.Join(dir, "kairos.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	backend := apitest.NewServer(t)
	idp := authtest.NewServer(t)

	cfg := config.Default()
	cfg.Dir = dir
	cfg.Store = store.GetConfigPath()
	cfg.BackendURL = backend.URL
	cfg.AuthAPIKey = authtest.APIKey
	cfg.AuthBaseURL = idp.BaseURL()
	cfg.TokenURL = idp.TokenURL()
	cfg.Timezone = "UTC"

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Config:  cfg,
		Store:   store,
		Metrics: metrics.New(),
		Out:     out,
		Now:     func() time.Time { return Now },
	}
	t.Cleanup(func() { ctx.Close() })

	return &Env{Ctx: ctx, API: backend, IDP: idp, Out: out}
}

// SignIn registers a user with the identity provider, signs in and returns the uid
func (e *Env) SignIn(t *testing.T) string {
	t.Helper()
	uid := e.IDP.AddUser("ana@example.com", "secret1", "Ana")
	m, err := e.Ctx.Auth()
	if err != nil {
		t.Fatalf("Auth() error = %v", err)
	}
	if _, err := m.Login(context.Background(), validation.Credentials{Email: "ana@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return uid
}
