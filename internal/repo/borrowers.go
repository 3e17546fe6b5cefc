package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Borrowers struct{ pool *pgxpool.Pool }

func NewBorrowers(p *pgxpool.Pool) *Borrowers { return &Borrowers{pool: p} }

// GetOrCreate looks a borrower up case-insensitively by exact name and
// returns the existing id, inserting a new row only when none matches.
// Runs in a transaction so two concurrent calls for the same new name
// cannot both insert.
func (r *Borrowers) GetOrCreate(ctx context.Context, name string, phone *string) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, storeErr("borrowers.get_or_create", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM borrowers WHERE lower(name) = lower($1)`,
		name,
	).Scan(&id)
	if err == nil {
		if err := tx.Commit(ctx); err != nil {
			return 0, storeErr("borrowers.get_or_create", err)
		}
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, storeErr("borrowers.get_or_create", err)
	}

	// The unique index on lower(name) backs this up against a race with
	// another connection inserting between our select and insert.
	err = tx.QueryRow(ctx, `
		INSERT INTO borrowers(name, phone)
		VALUES($1, $2)
		ON CONFLICT (lower(name)) DO UPDATE SET name = borrowers.name
		RETURNING id
	`, name, phone).Scan(&id)
	if err != nil {
		return 0, storeErr("borrowers.get_or_create", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, storeErr("borrowers.get_or_create", err)
	}
	return id, nil
}

func (r *Borrowers) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM borrowers WHERE id=$1)`, id,
	).Scan(&ok)
	if err != nil {
		return false, storeErr("borrowers.exists", err)
	}
	return ok, nil
}
