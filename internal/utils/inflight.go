package utils

import (
	"context"
	"sync"
)

// Inflight tracks the single outstanding request of a card. Starting a new
// request cancels the previous one, and only the latest request is current.
type Inflight struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Start cancels any outstanding request and returns a context and sequence
// number for the new one.
func (f *Inflight) Start(parent context.Context) (context.Context, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	f.cancel = cancel
	f.seq++
	return ctx, f.seq
}

// Current reports whether seq belongs to the latest started request.
func (f *Inflight) Current(seq uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return seq == f.seq
}

// Done releases the context of seq if it is still the latest request.
func (f *Inflight) Done(seq uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seq == f.seq && f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// Cancel aborts the outstanding request, if any.
func (f *Inflight) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.seq++
}
