package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/travel-quote/backend/internal/domain"
)

// ReferenceRepo defines the read-only queries against the rate tables.
// Single-row lookups return domain.ErrNotFound when the row does not exist.
type ReferenceRepo interface {
	// BasePremium returns the premium row whose type is "base".
	BasePremium(ctx context.Context) (domain.BasePremium, error)

	TripType(ctx context.Context, id int64) (domain.TripType, error)
	Excess(ctx context.Context, id int64) (domain.Excess, error)
	Cover(ctx context.Context, id int64) (domain.Cover, error)

	// DestinationsByIDs returns the destinations among ids, highest zone first.
	// Unknown ids are ignored.
	DestinationsByIDs(ctx context.Context, ids []int64) ([]domain.Destination, error)

	// AgeBrackets and DurationBrackets return every bracket, unordered.
	AgeBrackets(ctx context.Context) ([]domain.Bracket, error)
	DurationBrackets(ctx context.Context) ([]domain.Bracket, error)

	// ListCovers returns every cover tier ordered by id.
	ListCovers(ctx context.Context) ([]domain.Cover, error)
	// ListTripTypes returns every trip type ordered by id.
	ListTripTypes(ctx context.Context) ([]domain.TripType, error)
	// ListExcesses returns every excess tier ordered by id.
	ListExcesses(ctx context.Context) ([]domain.Excess, error)
	// ListDestinations returns every destination ordered by label.
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
}

// pgReferenceRepo is the Postgres implementation of ReferenceRepo.
type pgReferenceRepo struct {
	db db
}

// NewReferenceRepo constructs a ReferenceRepo backed by the provided db connection.
func NewReferenceRepo(db db) ReferenceRepo {
	return &pgReferenceRepo{db: db}
}

const destinationColumns = `id, label, code, zone, multiplier, cruise_add_on_amount, ski_per_day_amount`

func (r *pgReferenceRepo) BasePremium(ctx context.Context) (domain.BasePremium, error) {
	const q = `
		SELECT id, label, premium_type, multiplier
		FROM premiums
		WHERE premium_type = @type
		ORDER BY id
		LIMIT 1`

	var p domain.BasePremium
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"type": domain.BasePremiumType}).
		Scan(&p.ID, &p.Label, &p.Type, &p.Multiplier)
	if err != nil {
		return domain.BasePremium{}, fmt.Errorf("repo.ReferenceRepo.BasePremium: %w", notFound(err))
	}
	return p, nil
}

func (r *pgReferenceRepo) TripType(ctx context.Context, id int64) (domain.TripType, error) {
	const q = `SELECT id, label, multiplier FROM trip_types WHERE id = @id`

	var t domain.TripType
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&t.ID, &t.Label, &t.Multiplier)
	if err != nil {
		return domain.TripType{}, fmt.Errorf("repo.ReferenceRepo.TripType: %w", notFound(err))
	}
	return t, nil
}

func (r *pgReferenceRepo) Excess(ctx context.Context, id int64) (domain.Excess, error) {
	const q = `SELECT id, label, multiplier FROM excesses WHERE id = @id`

	var e domain.Excess
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&e.ID, &e.Label, &e.Multiplier)
	if err != nil {
		return domain.Excess{}, fmt.Errorf("repo.ReferenceRepo.Excess: %w", notFound(err))
	}
	return e, nil
}

func (r *pgReferenceRepo) Cover(ctx context.Context, id int64) (domain.Cover, error) {
	const q = `SELECT id, label, multiplier FROM covers WHERE id = @id`

	var c domain.Cover
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&c.ID, &c.Label, &c.Multiplier)
	if err != nil {
		return domain.Cover{}, fmt.Errorf("repo.ReferenceRepo.Cover: %w", notFound(err))
	}
	return c, nil
}

// DestinationsByIDs orders by zone descending; ties fall back to id so the
// "highest zone" pick is stable.
func (r *pgReferenceRepo) DestinationsByIDs(ctx context.Context, ids []int64) ([]domain.Destination, error) {
	const q = `
		SELECT ` + destinationColumns + `
		FROM destinations
		WHERE id = ANY(@ids)
		ORDER BY zone DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.DestinationsByIDs: %w", err)
	}
	out, err := pgx.CollectRows(rows, rowToDestination)
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.DestinationsByIDs: scan: %w", err)
	}
	return out, nil
}

func (r *pgReferenceRepo) AgeBrackets(ctx context.Context) ([]domain.Bracket, error) {
	out, err := r.brackets(ctx, `SELECT id, age_minimum, age_maximum, multiplier FROM ages`)
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.AgeBrackets: %w", err)
	}
	return out, nil
}

func (r *pgReferenceRepo) DurationBrackets(ctx context.Context) ([]domain.Bracket, error) {
	out, err := r.brackets(ctx, `SELECT id, minimum_days, maximum_days, multiplier FROM durations`)
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.DurationBrackets: %w", err)
	}
	return out, nil
}

func (r *pgReferenceRepo) brackets(ctx context.Context, q string) ([]domain.Bracket, error) {
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Bracket, error) {
		var b domain.Bracket
		err := row.Scan(&b.ID, &b.Min, &b.Max, &b.Multiplier)
		return b, err
	})
}

func (r *pgReferenceRepo) ListCovers(ctx context.Context) ([]domain.Cover, error) {
	rows, err := r.db.Query(ctx, `SELECT id, label, multiplier FROM covers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.ListCovers: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Cover, error) {
		var c domain.Cover
		err := row.Scan(&c.ID, &c.Label, &c.Multiplier)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.ListCovers: scan: %w", err)
	}
	return out, nil
}

func (r *pgReferenceRepo) ListTripTypes(ctx context.Context) ([]domain.TripType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, label, multiplier FROM trip_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.ListTripTypes: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TripType, error) {
		var t domain.TripType
		err := row.Scan(&t.ID, &t.Label, &t.Multiplier)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.ListTripTypes: scan: %w", err)
	}
	return out, nil
}

func (r *pgReferenceRepo) ListExcesses(ctx context.Context) ([]domain.Excess, error) {
	rows, err := r.db.Query(ctx, `SELECT id, label, multiplier FROM excesses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.ListExcesses: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Excess, error) {
		var e domain.Excess
		err := row.Scan(&e.ID, &e.Label, &e.Multiplier)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.ListExcesses: scan: %w", err)
	}
	return out, nil
}

func (r *pgReferenceRepo) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	rows, err := r.db.Query(ctx, `SELECT `+destinationColumns+` FROM destinations ORDER BY label, id`)
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.ListDestinations: %w", err)
	}
	out, err := pgx.CollectRows(rows, rowToDestination)
	if err != nil {
		return nil, fmt.Errorf("repo.ReferenceRepo.ListDestinations: scan: %w", err)
	}
	return out, nil
}

// rowToDestination scans a row selected with destinationColumns.
// The nullable multiplier and ski amount scan into pointers.
func rowToDestination(row pgx.CollectableRow) (domain.Destination, error) {
	var d domain.Destination
	err := row.Scan(&d.ID, &d.Label, &d.Code, &d.Zone, &d.Multiplier, &d.CruiseAddOnAmount, &d.SkiPerDayAmount)
	return d, err
}
