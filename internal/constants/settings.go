package constants

import "time"

const (
	// Configuration keys, as used in config.yaml and `kairos settings`
	SettingBackendURL  = "backend_url"
	SettingAuthAPIKey  = "auth_api_key"
	SettingAuthBaseURL = "auth_base_url"
	SettingTokenURL    = "token_url"
	SettingStore       = "store"
	SettingTimezone    = "timezone"
	SettingLocale      = "locale"
	SettingCurrency    = "currency"
	SettingRedisAddr   = "redis_addr"
	SettingMetricsFile = "metrics_file"
	SettingLogLevel    = "log_level"

	// Default Settings Values
	DefaultBackendURL  = "http://localhost:8080"
	DefaultAuthBaseURL = "https://identitytoolkit.googleapis.com/v1"
	DefaultTokenURL    = "https://securetoken.googleapis.com/v1/token"
	DefaultTimezone    = "Local" // Use system local timezone by default
	DefaultLocale      = "en-US"
	DefaultCurrency    = "USD"
	DefaultHTTPTimeout = 15 * time.Second
	DefaultCacheTTL    = 5 * time.Minute
	DefaultRedisPrefix = "kairos"
	DefaultLogLevel    = "warn"
)
