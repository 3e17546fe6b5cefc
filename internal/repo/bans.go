package repo

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/markdavidb/loan-manager-bot/internal/domain"
)

type Bans struct{ pool *pgxpool.Pool }

func NewBans(p *pgxpool.Pool) *Bans { return &Bans{pool: p} }

// IsBanned is fail-closed the other way round from authorization: when
// the store cannot answer we report banned, so a gated action never slips
// through on an error.
func (r *Bans) IsBanned(ctx context.Context, tgID int64) bool {
	var banned bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM banned_users WHERE tg_id = $1)`, tgID,
	).Scan(&banned)
	if err != nil {
		log.Printf("bans: is_banned check for %d failed: %v", tgID, err)
		return true
	}
	return banned
}

// Ban inserts a ban row. Returns false when the identity is already
// banned; the original reason is kept, never overwritten.
func (r *Bans) Ban(ctx context.Context, tgID int64, reason string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO banned_users(tg_id, reason)
		VALUES($1, $2)
		ON CONFLICT (tg_id) DO NOTHING
	`, tgID, reason)
	if err != nil {
		return false, storeErr("bans.ban", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Unban removes the ban row. Returns false when the identity was not
// banned in the first place.
func (r *Bans) Unban(ctx context.Context, tgID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM banned_users WHERE tg_id = $1`, tgID)
	if err != nil {
		return false, storeErr("bans.unban", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Bans) ListBanned(ctx context.Context) ([]domain.BannedUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tg_id, banned_at, reason
		FROM banned_users
		ORDER BY banned_at DESC
	`)
	if err != nil {
		return nil, storeErr("bans.list", err)
	}
	defer rows.Close()

	var out []domain.BannedUser
	for rows.Next() {
		var b domain.BannedUser
		if err := rows.Scan(&b.ID, &b.TelegramID, &b.BannedAt, &b.Reason); err != nil {
			return nil, storeErr("bans.list", err)
		}
		out = append(out, b)
	}
	return out, storeErr("bans.list", rows.Err())
}
