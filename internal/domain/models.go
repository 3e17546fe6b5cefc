package domain

import "time"

// Frequency is how often a loan installment is due.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly
}

// Status is the loan lifecycle state. The only transition is
// active -> completed, when the payment count reaches zero.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Borrower struct {
	ID        int64
	Name      string
	Phone     *string
	CreatedAt time.Time
}

type Loan struct {
	ID               int64
	BorrowerID       int64
	TotalAmount      float64
	RemainingAmount  float64
	PaymentFrequency Frequency
	NumberOfPayments int
	PaymentAmount    float64
	CreatedAt        time.Time
	Status           Status
}

// LoanView is a loan joined with its borrower's name, the shape every
// read operation returns.
type LoanView struct {
	ID              int64     `json:"id"`
	BorrowerName    string    `json:"borrower_name"`
	TotalAmount     float64   `json:"total_amount"`
	RemainingAmount float64   `json:"remaining_amount"`
	PaymentAmount   float64   `json:"payment_amount"`
	Frequency       Frequency `json:"frequency"`
	PaymentsLeft    int       `json:"payments_left"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type AuthorizedUser struct {
	ID           int64
	TelegramID   int64
	IsAuthorized bool
}

type BannedUser struct {
	ID         int64
	TelegramID int64
	BannedAt   time.Time
	Reason     string
}
