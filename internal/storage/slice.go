package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/logger"
)

// envelope is the stored form of a slice
type envelope[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// Slice is a named piece of state that is loaded from a Provider once and
// written back on every change.
type Slice[T any] struct {
	name     string
	provider Provider
	version  int
	initial  T

	mu       sync.RWMutex
	state    T
	hydrated bool
	nextID   int
	subs     map[int]func(T)
}

// NewSlice returns a slice named name holding initial until hydrated
func NewSlice[T any](p Provider, name string, initial T) *Slice[T] {
	return &Slice[T]{
		name:     name,
		provider: p,
		version:  constants.PersistVersion,
		initial:  initial,
		state:    initial,
		subs:     make(map[int]func(T)),
	}
}

// Name returns the storage key of the slice
func (s *Slice[T]) Name() string {
	return s.name
}

// Hydrate loads the stored state. A missing record keeps the initial state;
// a record written with another version is discarded.
func (s *Slice[T]) Hydrate() error {
	raw, err := s.provider.Get(s.name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to load %s: %w", s.name, err)
	}

	s.mu.Lock()
	s.hydrated = true
	if errors.Is(err, ErrNotFound) {
		s.mu.Unlock()
		return nil
	}

	var env envelope[T]
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to decode %s: %w", s.name, err)
	}
	if env.Version != s.version {
		s.mu.Unlock()
		logger.Warn("Discarding persisted state with unknown version", "slice", s.name, "version", env.Version)
		return nil
	}
	s.state = env.State
	state := s.state
	s.mu.Unlock()

	s.notify(state)
	return nil
}

// Hydrated reports whether Hydrate has completed
func (s *Slice[T]) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Get returns the current state
func (s *Slice[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Set replaces the state and persists it. The in-memory state is updated
// even when the write fails.
func (s *Slice[T]) Set(v T) error {
	s.mu.Lock()
	s.state = v
	s.mu.Unlock()

	err := s.persist(v)
	s.notify(v)
	return err
}

// Update applies fn to a copy of the state and stores the result
func (s *Slice[T]) Update(fn func(*T)) error {
	s.mu.Lock()
	next := s.state
	fn(&next)
	s.state = next
	s.mu.Unlock()

	err := s.persist(next)
	s.notify(next)
	return err
}

// Reset restores the initial state and removes the stored record
func (s *Slice[T]) Reset() error {
	s.mu.Lock()
	s.state = s.initial
	state := s.state
	s.mu.Unlock()

	var err error
	if derr := s.provider.Delete(s.name); derr != nil && !errors.Is(derr, ErrNotFound) {
		err = fmt.Errorf("failed to delete %s: %w", s.name, derr)
	}
	s.notify(state)
	return err
}

// Subscribe registers fn to be called with the new state after every
// change. The returned function removes the subscription.
func (s *Slice[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Slice[T]) persist(v T) error {
	data, err := json.Marshal(envelope[T]{State: v, Version: s.version})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.name, err)
	}
	if err := s.provider.Put(s.name, string(data)); err != nil {
		logger.Error("Failed to persist state", "slice", s.name, "error", err)
		return fmt.Errorf("failed to save %s: %w", s.name, err)
	}
	return nil
}

func (s *Slice[T]) notify(v T) {
	s.mu.RLock()
	subs := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(v)
	}
}
