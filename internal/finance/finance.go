// Package finance derives the dashboard balance from a finance summary.
package finance

import (
	"context"
	"errors"
	"sync"

	"github.com/julianstephens/kairos/internal/logger"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/utils"
)

// Fetcher loads the finance summary of a user
type Fetcher interface {
	FinanceSummary(ctx context.Context, uid string) (*models.FinanceSummary, error)
}

// Balance is income minus expenses, in the currency and locale of income
func Balance(s models.FinanceSummary) models.Money {
	return models.Money{
		Value:    s.TotalIncome.Value - s.TotalExpenses.Value,
		Currency: s.TotalIncome.Currency,
		Locale:   s.TotalIncome.Locale,
	}
}

// IsPositive reports whether the balance is zero or above
func IsPositive(s models.FinanceSummary) bool {
	return Balance(s).Value >= 0
}

// Card holds the latest finance summary. Only the most recent fetch may
// update it; a newer fetch aborts the older one.
type Card struct {
	mu       sync.Mutex
	inflight utils.Inflight
	loading  bool
	data     *models.FinanceSummary
	err      error
}

func NewCard() *Card {
	return &Card{loading: true}
}

// Start begins a fetch, aborting any outstanding one. The returned sequence
// must be passed to Finish.
func (c *Card) Start(parent context.Context) (context.Context, uint64) {
	c.mu.Lock()
	c.loading = true
	c.err = nil
	c.mu.Unlock()
	return c.inflight.Start(parent)
}

// Finish applies the result of fetch seq. Results of superseded fetches and
// cancellations are ignored. It reports whether the card changed.
func (c *Card) Finish(seq uint64, data *models.FinanceSummary, err error) bool {
	if !c.inflight.Current(seq) {
		return false
	}
	defer c.inflight.Done(seq)

	if err != nil && errors.Is(err, context.Canceled) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		logger.Warn("Failed to load finance summary", "error", err)
		c.err = err
		return true
	}
	c.err = nil
	c.data = data
	return true
}

// Fetch runs a complete fetch against f, blocking until it finishes
func (c *Card) Fetch(parent context.Context, f Fetcher, uid string) error {
	ctx, seq := c.Start(parent)
	data, err := f.FinanceSummary(ctx, uid)
	c.Finish(seq, data, err)
	return err
}

// Cancel aborts the outstanding fetch
func (c *Card) Cancel() {
	c.inflight.Cancel()
}

func (c *Card) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Card) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Data returns the last loaded summary, or nil
func (c *Card) Data() *models.FinanceSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return nil
	}
	d := *c.data
	return &d
}
