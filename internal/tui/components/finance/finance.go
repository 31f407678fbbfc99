package finance

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/kairos/internal/finance"
	"github.com/julianstephens/kairos/internal/money"
)

var (
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// View renders the finance card for card
func View(card *finance.Card) string {
	data := card.Data()
	if err := card.Err(); err != nil {
		return errorStyle.Render("Could not load finances: "+err.Error()) + "\n" +
			labelStyle.Render("Press r to retry.")
	}
	if card.Loading() && data == nil {
		return labelStyle.Render("Loading finances...")
	}
	if data == nil {
		return "No finance data."
	}

	balance := money.Format(finance.Balance(*data))
	var b strings.Builder
	b.WriteString(labelStyle.Render("Balance") + "\n")
	if finance.IsPositive(*data) {
		b.WriteString(positiveStyle.Render("▲ "+balance) + "\n")
	} else {
		b.WriteString(negativeStyle.Render("▼ "+balance) + "\n")
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Income:  "), money.Format(data.TotalIncome))
	fmt.Fprintf(&b, "%s %s", labelStyle.Render("Expenses:"), money.Format(data.TotalExpenses))
	return b.String()
}
