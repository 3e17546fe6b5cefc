package bot

import (
	"fmt"
	"strings"

	"github.com/markdavidb/loan-manager-bot/internal/domain"
)

// formatMoney renders an amount as $1,234.56.
func formatMoney(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%.2f", amount)
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatLoanDetails(v *domain.LoanView) string {
	return fmt.Sprintf(
		"💰 Loan Details for %s\n\n"+
			"📅 Created: %s\n"+
			"💵 Total Amount: %s\n"+
			"🏷️ Remaining: %s\n"+
			"💸 Payment Amount: %s\n"+
			"🔄 Frequency: %s\n"+
			"📊 Payments Left: %d\n"+
			"📌 Status: %s",
		v.BorrowerName,
		v.CreatedAt.Format("2006-01-02"),
		formatMoney(v.TotalAmount),
		formatMoney(v.RemainingAmount),
		formatMoney(v.PaymentAmount),
		title(string(v.Frequency)),
		v.PaymentsLeft,
		title(string(v.Status)),
	)
}
