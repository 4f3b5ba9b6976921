package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes signalling that the expected schema is not
// provisioned. The version engine treats these as a degraded-mode trigger;
// every other repository error is fatal to the current operation.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// IsSchemaMissing reports whether err indicates a missing table or column.
func IsSchemaMissing(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUndefinedTable || pgErr.Code == pgUndefinedColumn
}
