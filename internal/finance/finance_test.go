package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/julianstephens/kairos/internal/models"
)

func summary(income, expenses float64) models.FinanceSummary {
	return models.FinanceSummary{
		TotalIncome:   models.Money{Value: income, Currency: "USD", Locale: "en-US"},
		TotalExpenses: models.Money{Value: expenses, Currency: "EUR", Locale: "de-DE"},
	}
}

func TestBalance(t *testing.T) {
	tests := []struct {
		name     string
		income   float64
		expenses float64
		want     float64
		positive bool
	}{
		{"surplus", 5000, 3200.5, 1799.5, true},
		{"deficit", 1000, 1890, -890, false},
		{"break even counts as positive", 100, 100, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := summary(tt.income, tt.expenses)
			got := Balance(s)
			if got.Value != tt.want {
				t.Errorf("Balance().Value = %v, want %v", got.Value, tt.want)
			}
			if got.Currency != "USD" || got.Locale != "en-US" {
				t.Errorf("Balance() should use income currency, got %s/%s", got.Currency, got.Locale)
			}
			if IsPositive(s) != tt.positive {
				t.Errorf("IsPositive() = %v, want %v", IsPositive(s), tt.positive)
			}
		})
	}
}

type stubFetcher struct {
	data *models.FinanceSummary
	err  error
}

func (f stubFetcher) FinanceSummary(ctx context.Context, uid string) (*models.FinanceSummary, error) {
	return f.data, f.err
}

func TestCardFetch(t *testing.T) {
	c := NewCard()
	if !c.Loading() {
		t.Error("new card should be loading")
	}

	s := summary(10, 5)
	if err := c.Fetch(context.Background(), stubFetcher{data: &s}, "u1"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if c.Loading() || c.Err() != nil {
		t.Errorf("unexpected state loading=%v err=%v", c.Loading(), c.Err())
	}
	if got := c.Data(); got == nil || got.TotalIncome.Value != 10 {
		t.Errorf("Data() = %+v", got)
	}
}

func TestCardErrorAndRetry(t *testing.T) {
	c := NewCard()
	boom := errors.New("boom")
	if err := c.Fetch(context.Background(), stubFetcher{err: boom}, "u1"); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !errors.Is(c.Err(), boom) {
		t.Errorf("Err() = %v, want boom", c.Err())
	}

	s := summary(1, 2)
	_ = c.Fetch(context.Background(), stubFetcher{data: &s}, "u1")
	if c.Err() != nil {
		t.Errorf("retry should clear the error, got %v", c.Err())
	}
	if c.Data() == nil {
		t.Error("retry should load data")
	}
}

func TestCardIgnoresSupersededFetch(t *testing.T) {
	c := NewCard()
	firstCtx, first := c.Start(context.Background())
	_, second := c.Start(context.Background())

	if firstCtx.Err() == nil {
		t.Error("starting a new fetch should abort the previous one")
	}

	stale := summary(1, 0)
	if c.Finish(first, &stale, nil) {
		t.Error("stale result should be ignored")
	}
	if c.Data() != nil {
		t.Error("stale result must not reach the card")
	}

	fresh := summary(2, 0)
	if !c.Finish(second, &fresh, nil) {
		t.Error("current result should apply")
	}
	if got := c.Data(); got == nil || got.TotalIncome.Value != 2 {
		t.Errorf("Data() = %+v", got)
	}
}

func TestCardIgnoresCancellation(t *testing.T) {
	c := NewCard()
	_, seq := c.Start(context.Background())
	if c.Finish(seq, nil, context.Canceled) {
		t.Error("cancellation should not change the card")
	}
	if c.Err() != nil {
		t.Errorf("cancellation must not surface as an error, got %v", c.Err())
	}
}
