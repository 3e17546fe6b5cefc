package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/markdavidb/loan-manager-bot/internal/domain"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{100, "$100.00"},
		{1234.5, "$1,234.50"},
		{1200, "$1,200.00"},
		{1000000, "$1,000,000.00"},
		{-42.1, "-$42.10"},
	}
	for _, tc := range cases {
		if got := formatMoney(tc.in); got != tc.want {
			t.Errorf("formatMoney(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatLoanDetails(t *testing.T) {
	v := &domain.LoanView{
		ID:              1,
		BorrowerName:    "Bob",
		TotalAmount:     1200,
		RemainingAmount: 1100,
		PaymentAmount:   100,
		Frequency:       domain.FrequencyMonthly,
		PaymentsLeft:    11,
		Status:          domain.StatusActive,
		CreatedAt:       time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	out := formatLoanDetails(v)
	for _, want := range []string{
		"Loan Details for Bob",
		"Created: 2025-03-01",
		"Total Amount: $1,200.00",
		"Remaining: $1,100.00",
		"Frequency: Monthly",
		"Payments Left: 11",
		"Status: Active",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("details missing %q:\n%s", want, out)
		}
	}
}
