// Package config loads kairos settings from config.yaml, .env files and
// KAIROS_* environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/utils"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "KAIROS_"

// ErrUnknownSetting is returned by Set and Get for keys that are not settings
var ErrUnknownSetting = errors.New("unknown setting")

type Config struct {
	// Backend
	BackendURL  string        `yaml:"backend_url" env:"BACKEND_URL"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"HTTP_TIMEOUT"`

	// Identity provider
	AuthAPIKey  string `yaml:"auth_api_key" env:"AUTH_API_KEY"`
	AuthBaseURL string `yaml:"auth_base_url" env:"AUTH_BASE_URL"`
	TokenURL    string `yaml:"token_url" env:"TOKEN_URL"`

	// Local storage: a SQLite path or a PostgreSQL connection string
	Store string `yaml:"store" env:"STORE"`

	// Display
	Timezone string `yaml:"timezone" env:"TIMEZONE"`
	Locale   string `yaml:"locale" env:"LOCALE"`
	Currency string `yaml:"currency" env:"CURRENCY"`

	// Response cache; disabled when RedisAddr is empty
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"-" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
	CacheTTL      time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`

	MetricsFile string `yaml:"metrics_file" env:"METRICS_FILE"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	Debug       bool   `yaml:"debug" env:"DEBUG"`

	// Dir is the directory the configuration was loaded from
	Dir string `yaml:"-"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		BackendURL:  constants.DefaultBackendURL,
		HTTPTimeout: constants.DefaultHTTPTimeout,
		AuthBaseURL: constants.DefaultAuthBaseURL,
		TokenURL:    constants.DefaultTokenURL,
		Store:       constants.DefaultStorePath,
		Timezone:    constants.DefaultTimezone,
		Locale:      constants.DefaultLocale,
		Currency:    constants.DefaultCurrency,
		CacheTTL:    constants.DefaultCacheTTL,
		LogLevel:    constants.DefaultLogLevel,
	}
}

// Load builds the configuration for dir. Missing files are not an error.
func Load(dir string) (Config, error) {
	dir, err := ExpandPath(dir)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Dir = dir

	data, err := os.ReadFile(filepath.Join(dir, constants.ConfigFileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", constants.ConfigFileName, err)
		}
	case !os.IsNotExist(err):
		return Config{}, fmt.Errorf("failed to read %s: %w", constants.ConfigFileName, err)
	}

	// .env files never override variables already set in the environment,
	// so the working directory file wins over the one in the config dir
	for _, envFile := range []string{".env", filepath.Join(dir, ".env")} {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := env.Parse(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.Dir = dir

	return cfg, nil
}

// Save writes the file-backed settings of cfg to config.yaml in cfg.Dir
func Save(cfg Config) error {
	if cfg.Dir == "" {
		return errors.New("config directory is not set")
	}
	if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	path := filepath.Join(cfg.Dir, constants.ConfigFileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Validate checks that the settings are usable
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s %q: must be an absolute URL", constants.SettingBackendURL, c.BackendURL)
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid %s %q", constants.SettingTimezone, c.Timezone)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl cannot be negative, got %s", c.CacheTTL)
	}
	return nil
}

// Location returns the configured timezone
func (c Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Keys lists the settings that can be read and written with Get and Set
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for k := range accessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type accessor struct {
	get func(*Config) string
	set func(*Config, string) error
}

func str(field func(*Config) *string) accessor {
	return accessor{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func duration(field func(*Config) *time.Duration) accessor {
	return accessor{
		get: func(c *Config) string { return field(c).String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", v, err)
			}
			*field(c) = d
			return nil
		},
	}
}

var accessors = map[string]accessor{
	constants.SettingBackendURL:  str(func(c *Config) *string { return &c.BackendURL }),
	constants.SettingAuthAPIKey:  str(func(c *Config) *string { return &c.AuthAPIKey }),
	constants.SettingAuthBaseURL: str(func(c *Config) *string { return &c.AuthBaseURL }),
	constants.SettingTokenURL:    str(func(c *Config) *string { return &c.TokenURL }),
	constants.SettingStore:       str(func(c *Config) *string { return &c.Store }),
	constants.SettingLocale:      str(func(c *Config) *string { return &c.Locale }),
	constants.SettingCurrency:    str(func(c *Config) *string { return &c.Currency }),
	constants.SettingRedisAddr:   str(func(c *Config) *string { return &c.RedisAddr }),
	constants.SettingMetricsFile: str(func(c *Config) *string { return &c.MetricsFile }),
	constants.SettingLogLevel:    str(func(c *Config) *string { return &c.LogLevel }),
	constants.SettingTimezone: {
		get: func(c *Config) string { return c.Timezone },
		set: func(c *Config, v string) error {
			if !utils.ValidateTimezone(v) {
				return fmt.Errorf("invalid timezone %q", v)
			}
			c.Timezone = v
			return nil
		},
	},
	"redis_db": {
		get: func(c *Config) string { return strconv.Itoa(c.RedisDB) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid redis_db %q", v)
			}
			c.RedisDB = n
			return nil
		},
	},
	"http_timeout": duration(func(c *Config) *time.Duration { return &c.HTTPTimeout }),
	"cache_ttl":    duration(func(c *Config) *time.Duration { return &c.CacheTTL }),
}

// Get returns the string value of a setting
func (c *Config) Get(key string) (string, error) {
	a, ok := accessors[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return a.get(c), nil
}

// Set parses and assigns a setting
func (c *Config) Set(key, value string) error {
	a, ok := accessors[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return a.set(c, strings.TrimSpace(value))
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// IsPostgres reports whether the store setting is a PostgreSQL connection string
func (c Config) IsPostgres() bool {
	return IsPostgresConnString(c.Store)
}

// IsPostgresConnString reports whether s is a PostgreSQL URL or key=value DSN
func IsPostgresConnString(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://") ||
		strings.HasPrefix(s, "host=")
}
