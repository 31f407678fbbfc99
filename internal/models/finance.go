package models

// Money is an amount in a currency, optionally tied to a display locale
type Money struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"` // ISO 4217 code
	Locale   string  `json:"locale,omitempty"`
}

type FinanceSummary struct {
	TotalIncome     Money `json:"totalIncome"`
	TotalExpenses   Money `json:"totalExpenses"`
	NetWorth        Money `json:"netWorth"`
	MonthlyBudget   Money `json:"monthlyBudget"`
	SpentThisMonth  Money `json:"spentThisMonth"`
	RemainingBudget Money `json:"remainingBudget"`
}
