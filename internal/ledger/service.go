// Package ledger implements the loan business rules: borrower
// deduplication, loan creation, payment-count adjustment and the derived
// status/remaining-amount bookkeeping.
package ledger

import (
	"context"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/markdavidb/loan-manager-bot/internal/domain"
)

type BorrowerStore interface {
	GetOrCreate(ctx context.Context, name string, phone *string) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type LoanStore interface {
	Create(ctx context.Context, l domain.Loan) (int64, error)
	Get(ctx context.Context, id int64) (*domain.LoanView, error)
	ListActive(ctx context.Context) ([]domain.LoanView, error)
	SearchByName(ctx context.Context, fragment string) ([]domain.LoanView, error)
	SetPaymentCount(ctx context.Context, id int64, n int) (bool, error)
}

// ViewCache fronts ListActiveLoans. Implementations must treat failures
// as misses; nil disables caching entirely.
type ViewCache interface {
	GetActive(ctx context.Context) ([]domain.LoanView, bool)
	SetActive(ctx context.Context, views []domain.LoanView)
	Invalidate(ctx context.Context)
}

type Service struct {
	borrowers BorrowerStore
	loans     LoanStore
	cache     ViewCache
	validate  *validator.Validate
}

func NewService(b BorrowerStore, l LoanStore, c ViewCache) *Service {
	return &Service{
		borrowers: b,
		loans:     l,
		cache:     c,
		validate:  validator.New(),
	}
}

// CreateBorrower returns the id of the borrower with this name,
// creating one only when no existing name matches case-insensitively.
// Calling it twice with "Alice" and "ALICE" yields the same id.
func (s *Service) CreateBorrower(ctx context.Context, name string, phone *string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("borrower name: %w", domain.ErrInvalidArgument)
	}
	return s.borrowers.GetOrCreate(ctx, name, phone)
}

type CreateLoanInput struct {
	BorrowerID       int64            `validate:"required,gt=0"`
	TotalAmount      float64          `validate:"required,gt=0"`
	Frequency        domain.Frequency `validate:"required,oneof=weekly monthly"`
	NumberOfPayments int              `validate:"required,gt=0"`
	// PaymentAmount is computed by the caller as round(total/payments, 2)
	// and stored as given. It stays fixed for the life of the loan.
	PaymentAmount float64 `validate:"required,gt=0"`
}

func (s *Service) CreateLoan(ctx context.Context, in CreateLoanInput) (int64, error) {
	if err := s.validate.Struct(in); err != nil {
		return 0, fmt.Errorf("create loan: %w: %v", domain.ErrInvalidArgument, err)
	}

	ok, err := s.borrowers.Exists(ctx, in.BorrowerID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("borrower %d: %w", in.BorrowerID, domain.ErrNotFound)
	}

	id, err := s.loans.Create(ctx, domain.Loan{
		BorrowerID:       in.BorrowerID,
		TotalAmount:      in.TotalAmount,
		RemainingAmount:  in.TotalAmount,
		PaymentFrequency: in.Frequency,
		NumberOfPayments: in.NumberOfPayments,
		PaymentAmount:    in.PaymentAmount,
		Status:           domain.StatusActive,
	})
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return id, nil
}

// ListActiveLoans returns active loans newest first, served from the
// view cache when it holds a fresh copy.
func (s *Service) ListActiveLoans(ctx context.Context) ([]domain.LoanView, error) {
	if s.cache != nil {
		if views, ok := s.cache.GetActive(ctx); ok {
			return views, nil
		}
	}
	views, err := s.loans.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetActive(ctx, views)
	}
	return views, nil
}

// GetLoanDetails returns the loan regardless of status, or ErrNotFound.
func (s *Service) GetLoanDetails(ctx context.Context, id int64) (*domain.LoanView, error) {
	return s.loans.Get(ctx, id)
}

func (s *Service) SearchLoansByBorrowerName(ctx context.Context, fragment string) ([]domain.LoanView, error) {
	return s.loans.SearchByName(ctx, fragment)
}

// AdjustPaymentCount moves the remaining payment count by one in either
// direction. Decreasing floors at zero; increasing is unbounded. Returns
// the refreshed view, or nil when the loan does not exist or the count
// could not be changed (completed loans are immutable).
func (s *Service) AdjustPaymentCount(ctx context.Context, id int64, delta int) (*domain.LoanView, error) {
	if delta != 1 && delta != -1 {
		return nil, fmt.Errorf("adjust delta %d: %w", delta, domain.ErrInvalidArgument)
	}

	view, err := s.loans.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	n := view.PaymentsLeft + delta
	if n < 0 {
		n = 0
	}

	ok, err := s.SetPaymentCount(ctx, id, n)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.loans.Get(ctx, id)
}

// SetPaymentCount applies a new remaining payment count. Reports false
// when the loan is missing, completed, or the count is negative. A count
// of zero is the explicit terminal transition to completed with a zero
// remaining amount.
func (s *Service) SetPaymentCount(ctx context.Context, id int64, n int) (bool, error) {
	if n < 0 {
		return false, nil
	}
	ok, err := s.loans.SetPaymentCount(ctx, id, n)
	if err != nil {
		return false, err
	}
	if ok && s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return ok, nil
}

// PaymentAmountFor is the fixed-installment contract: the per-payment
// amount is total divided by the initial payment count, rounded to cents.
func PaymentAmountFor(total float64, payments int) float64 {
	return math.Round(total/float64(payments)*100) / 100
}
