package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markdavidb/loan-manager-bot/internal/domain"
)

type Loans struct{ pool *pgxpool.Pool }

func NewLoans(p *pgxpool.Pool) *Loans { return &Loans{pool: p} }

func (r *Loans) Create(ctx context.Context, l domain.Loan) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO loans(borrower_id, total_amount, remaining_amount,
		                  payment_frequency, number_of_payments, payment_amount, status)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, l.BorrowerID, l.TotalAmount, l.RemainingAmount,
		l.PaymentFrequency, l.NumberOfPayments, l.PaymentAmount, l.Status,
	).Scan(&id)
	if err != nil {
		return 0, storeErr("loans.create", err)
	}
	return id, nil
}

const loanViewColumns = `
	l.id, b.name, l.total_amount, l.remaining_amount, l.payment_amount,
	l.payment_frequency, l.number_of_payments, l.status, l.created_at`

func (r *Loans) Get(ctx context.Context, id int64) (*domain.LoanView, error) {
	var v domain.LoanView
	err := r.pool.QueryRow(ctx, `
		SELECT`+loanViewColumns+`
		FROM loans l
		JOIN borrowers b ON b.id = l.borrower_id
		WHERE l.id = $1
	`, id).Scan(
		&v.ID, &v.BorrowerName, &v.TotalAmount, &v.RemainingAmount,
		&v.PaymentAmount, &v.Frequency, &v.PaymentsLeft, &v.Status, &v.CreatedAt,
	)
	if err != nil {
		return nil, storeErr("loans.get", err)
	}
	return &v, nil
}

func (r *Loans) ListActive(ctx context.Context) ([]domain.LoanView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+loanViewColumns+`
		FROM loans l
		JOIN borrowers b ON b.id = l.borrower_id
		WHERE l.status = 'active'
		ORDER BY l.created_at DESC
	`)
	if err != nil {
		return nil, storeErr("loans.list_active", err)
	}
	defer rows.Close()
	return scanLoanViews(rows)
}

// SearchByName matches the borrower name case-insensitively on a
// substring, across all statuses.
func (r *Loans) SearchByName(ctx context.Context, fragment string) ([]domain.LoanView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+loanViewColumns+`
		FROM loans l
		JOIN borrowers b ON b.id = l.borrower_id
		WHERE b.name ILIKE '%' || $1 || '%'
		ORDER BY l.created_at DESC
	`, fragment)
	if err != nil {
		return nil, storeErr("loans.search_by_name", err)
	}
	defer rows.Close()
	return scanLoanViews(rows)
}

// SetPaymentCount rewrites the remaining payment count and rederives the
// remaining amount. A count of zero is the terminal transition: the loan
// becomes completed and its remaining amount is forced to zero. Completed
// loans are never touched again, so a loan cannot reactivate.
func (r *Loans) SetPaymentCount(ctx context.Context, id int64, n int) (bool, error) {
	if n < 0 {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE loans
		SET number_of_payments = $2,
		    remaining_amount   = CASE WHEN $2 = 0 THEN 0 ELSE payment_amount * $2 END,
		    status             = CASE WHEN $2 = 0 THEN 'completed' ELSE status END
		WHERE id = $1 AND status = 'active'
	`, id, n)
	if err != nil {
		return false, storeErr("loans.set_payment_count", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanLoanViews(rows pgx.Rows) ([]domain.LoanView, error) {
	out := make([]domain.LoanView, 0, 16)
	for rows.Next() {
		var v domain.LoanView
		if err := rows.Scan(
			&v.ID, &v.BorrowerName, &v.TotalAmount, &v.RemainingAmount,
			&v.PaymentAmount, &v.Frequency, &v.PaymentsLeft, &v.Status, &v.CreatedAt,
		); err != nil {
			return nil, storeErr("loans.scan", err)
		}
		out = append(out, v)
	}
	return out, storeErr("loans.rows", rows.Err())
}
