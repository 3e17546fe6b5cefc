package repo

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markdavidb/loan-manager-bot/internal/domain"
)

type Access struct{ pool *pgxpool.Pool }

func NewAccess(p *pgxpool.Pool) *Access { return &Access{pool: p} }

// IsAuthorized is fail-closed: any storage error is logged and reported
// as not authorized.
func (r *Access) IsAuthorized(ctx context.Context, tgID int64) bool {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT is_authorized FROM authorized_users WHERE tg_id = $1),
			FALSE)
	`, tgID).Scan(&ok)
	if err != nil {
		log.Printf("access: is_authorized check for %d failed: %v", tgID, err)
		return false
	}
	return ok
}

// Authorize upserts the identity with is_authorized=true, then re-reads
// the row to confirm the write actually landed.
func (r *Access) Authorize(ctx context.Context, tgID int64) bool {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO authorized_users(tg_id, is_authorized)
		VALUES($1, TRUE)
		ON CONFLICT (tg_id) DO UPDATE SET is_authorized = TRUE
	`, tgID)
	if err != nil {
		log.Printf("access: authorize %d failed: %v", tgID, err)
		return false
	}
	return r.IsAuthorized(ctx, tgID)
}

// IsAdmin is deliberately the same check as IsAuthorized: this design has
// a single tier, every authorized identity can run admin commands. Kept
// behind its own name so a real role system only has to change this.
func (r *Access) IsAdmin(ctx context.Context, tgID int64) bool {
	return r.IsAuthorized(ctx, tgID)
}

func (r *Access) ListAuthorized(ctx context.Context) ([]domain.AuthorizedUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tg_id, is_authorized
		FROM authorized_users
		WHERE is_authorized = TRUE
	`)
	if err != nil {
		return nil, storeErr("access.list_authorized", err)
	}
	defer rows.Close()

	var out []domain.AuthorizedUser
	for rows.Next() {
		var u domain.AuthorizedUser
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.IsAuthorized); err != nil {
			return nil, storeErr("access.list_authorized", err)
		}
		out = append(out, u)
	}
	return out, storeErr("access.list_authorized", rows.Err())
}
