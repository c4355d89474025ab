// Package repo contains all database access logic for the travel quote API.
// Each store has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-quote/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test. Begin on a
// pgx.Tx opens a savepoint, so repo-level transactions nest inside it.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// notFound converts pgx.ErrNoRows into domain.ErrNotFound and leaves other
// errors unchanged.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// foreignKeyViolation is the Postgres SQLSTATE for a failed FK reference.
const foreignKeyViolation = "23503"

// fkMessages maps quote foreign key constraints to user-facing messages.
// Constraint names are fixed in migrations/00002_create_quotes.sql.
var fkMessages = map[string]string{
	"quotes_trip_type_fk":        "Trip type must exist.",
	"quotes_excess_fk":           "Excess must exist.",
	"quotes_cover_fk":            "Cover must exist.",
	"quotes_to_destinations_dfk": "Destination must exist.",
}

// referenceViolation turns a foreign key violation on a quote write into a
// domain.ValidationError. Other errors are returned unchanged.
func referenceViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != foreignKeyViolation {
		return err
	}
	if msg, ok := fkMessages[pgErr.ConstraintName]; ok {
		return domain.NewValidationError(msg)
	}
	return domain.NewValidationError(pgErr.Detail)
}

// datePtr converts a nullable pgtype.Date into a *time.Time.
func datePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
