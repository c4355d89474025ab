package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-quote/backend/internal/domain"
)

// QuoteRepo defines the persistence operations for Quotes and their
// destination association.
// The service layer depends on this interface, not the concrete Postgres implementation.
type QuoteRepo interface {
	// Create inserts the edit's quote and, when destinations are staged, its
	// destination association. Returns the persisted record with DB-generated
	// id, created_at and updated_at populated.
	Create(ctx context.Context, edit domain.QuoteEdit) (domain.Quote, error)

	// GetByID retrieves a single quote with its destination ids.
	// Returns domain.ErrNotFound if no quote with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Quote, error)

	// ListPaged returns one page of quote summaries, newest first, and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.QuoteSummary, int64, error)

	// Update writes the add-on flags, snow dates and cover of an existing quote
	// and replaces its destinations when they are staged on the edit.
	// Returns domain.ErrNotFound if no quote with that ID exists.
	Update(ctx context.Context, edit domain.QuoteEdit) (domain.Quote, error)
}

// pgQuoteRepo is the Postgres implementation of QuoteRepo.
type pgQuoteRepo struct {
	db db
}

// NewQuoteRepo constructs a QuoteRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewQuoteRepo(db db) QuoteRepo {
	return &pgQuoteRepo{db: db}
}

// quoteColumns is the select list shared by every query that scans a quote.
// The destination ids subquery sees rows written earlier in the same transaction.
const quoteColumns = `
	q.id, q.age, q.travellers, q.start_date, q.end_date,
	q.trip_type_id, q.excess_id, q.cover_id, q.cruise, q.snow,
	q.snow_start_date, q.snow_end_date, q.created_at, q.updated_at,
	ARRAY(
		SELECT qd.destination_id FROM quotes_to_destinations qd
		WHERE qd.quote_id = q.id ORDER BY qd.destination_id
	) AS destination_ids`

// Create inserts a quote and syncs its destinations inside one transaction.
func (r *pgQuoteRepo) Create(ctx context.Context, edit domain.QuoteEdit) (domain.Quote, error) {
	const q = `
		INSERT INTO quotes AS q (
			age, travellers, start_date, end_date, trip_type_id, excess_id,
			cover_id, cruise, snow, snow_start_date, snow_end_date)
		VALUES (
			@age, @travellers, @start_date, @end_date, @trip_type_id, @excess_id,
			@cover_id, @cruise, @snow, @snow_start_date, @snow_end_date)
		RETURNING` + quoteColumns

	quote := edit.Quote
	args := pgx.NamedArgs{
		"age":             quote.Age,
		"travellers":      quote.Travellers,
		"start_date":      quote.StartDate,
		"end_date":        quote.EndDate,
		"trip_type_id":    quote.TripTypeID,
		"excess_id":       quote.ExcessID,
		"cover_id":        quote.CoverID, // nil becomes NULL
		"cruise":          quote.Cruise,
		"snow":            quote.Snow,
		"snow_start_date": quote.SnowStartDate,
		"snow_end_date":   quote.SnowEndDate,
	}

	var result domain.Quote
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		result, err = scanQuote(tx.QueryRow(ctx, q, args))
		if err != nil {
			return referenceViolation(err)
		}
		if edit.PendingDestinationIDs == nil {
			return nil
		}
		result.DestinationIDs, err = syncDestinations(ctx, tx, result.ID, edit.PendingDestinationIDs)
		return err
	})
	if err != nil {
		return domain.Quote{}, fmt.Errorf("repo.QuoteRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a quote by primary key.
func (r *pgQuoteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Quote, error) {
	const q = `SELECT` + quoteColumns + `
		FROM quotes q
		WHERE q.id = @id`

	result, err := scanQuote(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Quote{}, fmt.Errorf("repo.QuoteRepo.GetByID: %w", notFound(err))
	}
	return result, nil
}

// ListPaged returns a page of quote summaries ordered by created_at descending.
func (r *pgQuoteRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.QuoteSummary, int64, error) {
	const countQ = `SELECT count(*) FROM quotes`
	const q = `
		SELECT q.id,
		       CASE WHEN jsonb_typeof(q.travellers) = 'array'
		            THEN jsonb_array_length(q.travellers) ELSE 0 END,
		       q.start_date, q.end_date, q.trip_type_id,
		       ARRAY(
		           SELECT qd.destination_id FROM quotes_to_destinations qd
		           WHERE qd.quote_id = q.id ORDER BY qd.destination_id
		       ),
		       q.created_at
		FROM quotes q
		ORDER BY q.created_at DESC, q.id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.QuoteRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.QuoteRepo.ListPaged: %w", err)
	}

	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.QuoteSummary, error) {
		var (
			s          domain.QuoteSummary
			id         pgtype.UUID
			start, end pgtype.Date
		)
		if err := row.Scan(&id, &s.Travellers, &start, &end, &s.TripTypeID, &s.DestinationIDs, &s.CreatedAt); err != nil {
			return domain.QuoteSummary{}, err
		}
		s.ID = uuid.UUID(id.Bytes)
		s.StartDate = start.Time
		s.EndDate = end.Time
		return s, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.QuoteRepo.ListPaged: scan: %w", err)
	}
	return summaries, total, nil
}

// Update overwrites the editable fields of a quote and returns the updated record.
func (r *pgQuoteRepo) Update(ctx context.Context, edit domain.QuoteEdit) (domain.Quote, error) {
	const q = `
		UPDATE quotes AS q
		SET cruise          = @cruise,
		    snow            = @snow,
		    snow_start_date = @snow_start_date,
		    snow_end_date   = @snow_end_date,
		    cover_id        = @cover_id,
		    updated_at      = now()
		WHERE q.id = @id
		RETURNING` + quoteColumns

	quote := edit.Quote
	args := pgx.NamedArgs{
		"id":              quote.ID,
		"cruise":          quote.Cruise,
		"snow":            quote.Snow,
		"snow_start_date": quote.SnowStartDate,
		"snow_end_date":   quote.SnowEndDate,
		"cover_id":        quote.CoverID,
	}

	var result domain.Quote
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		result, err = scanQuote(tx.QueryRow(ctx, q, args))
		if err != nil {
			return referenceViolation(notFound(err))
		}
		if edit.PendingDestinationIDs == nil {
			return nil
		}
		result.DestinationIDs, err = syncDestinations(ctx, tx, result.ID, edit.PendingDestinationIDs)
		return err
	})
	if err != nil {
		return domain.Quote{}, fmt.Errorf("repo.QuoteRepo.Update: %w", err)
	}
	return result, nil
}

// syncDestinations replaces the quote's destination association with ids.
// Replace-all: every existing row is deleted, then each id is inserted once.
func syncDestinations(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, ids []int64) ([]int64, error) {
	const del = `DELETE FROM quotes_to_destinations WHERE quote_id = @quote_id`
	const ins = `
		INSERT INTO quotes_to_destinations (quote_id, destination_id)
		SELECT @quote_id::uuid, d FROM unnest(@destination_ids::bigint[]) AS d
		ON CONFLICT (quote_id, destination_id) DO NOTHING`
	const sel = `
		SELECT destination_id FROM quotes_to_destinations
		WHERE quote_id = @quote_id ORDER BY destination_id`

	if _, err := tx.Exec(ctx, del, pgx.NamedArgs{"quote_id": quoteID}); err != nil {
		return nil, fmt.Errorf("sync destinations: delete: %w", err)
	}
	if len(ids) > 0 {
		_, err := tx.Exec(ctx, ins, pgx.NamedArgs{"quote_id": quoteID, "destination_ids": ids})
		if err != nil {
			return nil, fmt.Errorf("sync destinations: insert: %w", referenceViolation(err))
		}
	}

	rows, err := tx.Query(ctx, sel, pgx.NamedArgs{"quote_id": quoteID})
	if err != nil {
		return nil, fmt.Errorf("sync destinations: reload: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// scanQuote maps a single database row selected with quoteColumns into a domain.Quote.
// It handles the UUID, jsonb travellers and nullable date/cover conversions.
func scanQuote(s scanner) (domain.Quote, error) {
	var (
		q                  domain.Quote
		id                 pgtype.UUID
		start, end         pgtype.Date
		snowStart, snowEnd pgtype.Date
		coverID            pgtype.Int8
	)

	err := s.Scan(
		&id, &q.Age, &q.Travellers, &start, &end,
		&q.TripTypeID, &q.ExcessID, &coverID, &q.Cruise, &q.Snow,
		&snowStart, &snowEnd, &q.CreatedAt, &q.UpdatedAt,
		&q.DestinationIDs,
	)
	if err != nil {
		return domain.Quote{}, err
	}

	q.ID = uuid.UUID(id.Bytes)
	q.StartDate = start.Time
	q.EndDate = end.Time
	q.SnowStartDate = datePtr(snowStart)
	q.SnowEndDate = datePtr(snowEnd)
	if coverID.Valid {
		c := coverID.Int64
		q.CoverID = &c
	}
	return q, nil
}
