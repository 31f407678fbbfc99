// Package storage persists small named JSON documents ("slices") of client
// state, such as the auth session and the user profile.
package storage

import "errors"

// ErrNotFound is returned when no value is stored under a name
var ErrNotFound = errors.New("not found")

// Provider is a durable key-value store. Implementations live in the sqlite
// and postgres subpackages.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Values
	Get(name string) (string, error)
	Put(name, value string) error
	Delete(name string) error
	Names() ([]string, error)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by providers backed by a versioned SQL schema
type Migrator interface {
	// Migrate applies pending migrations and returns how many ran
	Migrate(logFn func(string)) (int, error)
	// SchemaVersion returns the applied and the newest known schema version
	SchemaVersion() (current, latest int, err error)
}
