package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/markdavidb/loan-manager-bot/internal/domain"
)

// storeErr maps driver-level failures onto the domain error kinds the
// callers branch on: no rows is NotFound, anything else StoreUnavailable.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
