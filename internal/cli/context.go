// Package cli holds the state shared by every kairos command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/kairos/internal/api"
	"github.com/julianstephens/kairos/internal/auth"
	"github.com/julianstephens/kairos/internal/cache"
	"github.com/julianstephens/kairos/internal/config"
	"github.com/julianstephens/kairos/internal/constants"
	kerrors "github.com/julianstephens/kairos/internal/errors"
	"github.com/julianstephens/kairos/internal/keyring"
	"github.com/julianstephens/kairos/internal/logger"
	"github.com/julianstephens/kairos/internal/metrics"
	"github.com/julianstephens/kairos/internal/money"
	"github.com/julianstephens/kairos/internal/session"
	"github.com/julianstephens/kairos/internal/storage"
	"github.com/julianstephens/kairos/internal/storage/postgres"
	"github.com/julianstephens/kairos/internal/storage/sqlite"
)

// Context is passed to every command's Run method. The session, auth and
// API client are built on first use so that commands like `init` and
// `config` work without a backend.
type Context struct {
	Config  config.Config
	Store   storage.Provider
	Metrics *metrics.Recorder
	// Vault keeps refresh tokens out of the store; nil keeps them in it
	Vault session.Vault
	Out   io.Writer
	Now   func() time.Time

	// StoreErr is why Store is nil, for commands that run without one
	StoreErr error

	ctx    context.Context
	stores *session.Stores
	auth   *auth.Manager
	client *api.Client
	cache  *cache.Redis
}

// Context returns the context commands run their requests under. It is
// canceled when the process is interrupted.
func (c *Context) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// SetContext replaces the context returned by Context
func (c *Context) SetContext(ctx context.Context) {
	c.ctx = ctx
}

// NewContext returns a context for cfg and store, writing to stdout
func NewContext(cfg config.Config, store storage.Provider) *Context {
	money.SetDefaultLocale(cfg.Locale)
	return &Context{
		Config:  cfg,
		Store:   store,
		Metrics: metrics.New(),
		Vault:   session.KeyringVault(),
		Out:     os.Stdout,
		Now:     time.Now,
	}
}

// NewStore selects the storage backend for cfg. PostgreSQL is used when the
// store setting is a connection string, or when it is empty and one is kept
// in the keyring. Embedded passwords are only accepted from the keyring.
func NewStore(cfg config.Config) (storage.Provider, error) {
	connStr := cfg.Store
	fromKeyring := false
	if connStr == "" {
		if stored, err := keyring.GetConnectionString(); err == nil {
			connStr = stored
			fromKeyring = true
		} else {
			connStr = constants.DefaultStorePath
		}
	}

	if config.IsPostgresConnString(connStr) {
		_, err := postgres.ValidateConnString(connStr)
		if fromKeyring && errors.Is(err, postgres.ErrEmbeddedCredentials) {
			err = nil
		}
		if err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, kerrors.WithHint(err,
					"store the connection string with `kairos keyring set`, or use PGPASSWORD or a .pgpass file")
			}
			return nil, err
		}
		return postgres.New(connStr), nil
	}

	path, err := config.ExpandPath(connStr)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Today returns the current time in the configured timezone
func (c *Context) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(c.Config.Location())
}

// Session returns the hydrated session slices
func (c *Context) Session() (*session.Stores, error) {
	if c.stores != nil {
		return c.stores, nil
	}
	if c.Store == nil {
		return nil, errors.New("storage is not initialized")
	}
	stores, err := session.Open(c.Store, c.Vault)
	if err != nil {
		return nil, err
	}
	c.stores = stores
	return stores, nil
}

// Auth returns the session manager
func (c *Context) Auth() (*auth.Manager, error) {
	if c.auth != nil {
		return c.auth, nil
	}
	stores, err := c.Session()
	if err != nil {
		return nil, err
	}
	provider, err := auth.NewProvider(auth.ProviderConfig{
		APIKey:   c.Config.AuthAPIKey,
		BaseURL:  c.Config.AuthBaseURL,
		TokenURL: c.Config.TokenURL,
	})
	if err != nil {
		return nil, kerrors.WithHint(err, "set it with `kairos settings --set auth_api_key=<key>` or KAIROS_AUTH_API_KEY")
	}
	c.auth = auth.NewManager(provider, stores)
	return c.auth, nil
}

// UID returns the signed-in user's id
func (c *Context) UID() (string, error) {
	stores, err := c.Session()
	if err != nil {
		return "", err
	}
	if !stores.Auth.Authenticated() {
		return "", auth.ErrNotSignedIn
	}
	return stores.Auth.State().UID, nil
}

// Client returns the backend client, authenticated when an auth API key is
// configured. The Redis response cache is attached when reachable.
func (c *Context) Client() (*api.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	opts := []api.Option{api.WithMetrics(c.Metrics)}
	if c.Config.HTTPTimeout > 0 {
		opts = append(opts, api.WithTimeout(c.Config.HTTPTimeout))
	}
	if strings.TrimSpace(c.Config.AuthAPIKey) != "" {
		m, err := c.Auth()
		if err != nil {
			return nil, err
		}
		opts = append(opts, api.WithTokenSource(m))
	}
	if rc := c.responseCache(); rc != nil {
		opts = append(opts, api.WithCache(rc))
	}

	client, err := api.New(c.Config.BackendURL, opts...)
	if err != nil {
		return nil, kerrors.WithHint(err, "set it with `kairos settings --set backend_url=<url>`")
	}
	c.client = client
	return client, nil
}

func (c *Context) responseCache() *cache.Redis {
	if c.cache != nil || c.Config.RedisAddr == "" {
		return c.cache
	}
	rc, err := cache.New(c.Context(), cache.Options{
		Addr:     c.Config.RedisAddr,
		Password: c.Config.RedisPassword,
		DB:       c.Config.RedisDB,
		TTL:      c.Config.CacheTTL,
	})
	if err != nil {
		logger.Warn("Response cache disabled", "error", err)
		return nil
	}
	c.cache = rc
	return rc
}

// PurgeCache drops every cached response
func (c *Context) PurgeCache(ctx context.Context) {
	if rc := c.responseCache(); rc != nil {
		if err := rc.Purge(ctx, ""); err != nil {
			logger.Warn("Failed to purge response cache", "error", err)
		}
	}
}

// Close flushes metrics and releases the cache and the store
func (c *Context) Close() error {
	var errs []error
	if err := c.Metrics.WriteTextfile(c.Config.MetricsFile); err != nil {
		errs = append(errs, err)
	}
	if c.cache != nil {
		errs = append(errs, c.cache.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}
