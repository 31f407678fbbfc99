package finance

import (
	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/finance"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/money"
)

type FinanceCmd struct{}

func (c *FinanceCmd) Run(ctx *cli.Context) error {
	uid, err := ctx.UID()
	if err != nil {
		return err
	}
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	card := finance.NewCard()
	if err := card.Fetch(ctx.Context(), client, uid); err != nil {
		return err
	}
	summary := card.Data()
	if summary == nil {
		ctx.Println("No finance data available.")
		return nil
	}

	balance := finance.Balance(*summary)
	sign := "▲"
	if !finance.IsPositive(*summary) {
		sign = "▼"
	}
	ctx.Printf("Balance: %s %s\n", sign, money.Format(balance))
	ctx.Println()

	rows := []struct {
		label string
		value models.Money
	}{
		{"Income", summary.TotalIncome},
		{"Expenses", summary.TotalExpenses},
		{"Net worth", summary.NetWorth},
		{"Monthly budget", summary.MonthlyBudget},
		{"Spent this month", summary.SpentThisMonth},
		{"Remaining budget", summary.RemainingBudget},
	}
	for _, r := range rows {
		if r.value.Currency == "" {
			continue
		}
		ctx.Printf("  %-18s %s\n", r.label+":", money.Format(r.value))
	}
	return nil
}
