package service_test

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-quote/backend/internal/domain"
	"github.com/pkordes/travel-quote/backend/internal/repo"
)

// ---- mock repos ------------------------------------------------------------

// mockQuoteRepo is a hand-written test double for repo.QuoteRepo.
// Each method is a function field; set only the ones your test needs.
type mockQuoteRepo struct {
	create    func(ctx context.Context, edit domain.QuoteEdit) (domain.Quote, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Quote, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.QuoteSummary, int64, error)
	update    func(ctx context.Context, edit domain.QuoteEdit) (domain.Quote, error)
}

func (m *mockQuoteRepo) Create(ctx context.Context, edit domain.QuoteEdit) (domain.Quote, error) {
	return m.create(ctx, edit)
}
func (m *mockQuoteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Quote, error) {
	return m.getByID(ctx, id)
}
func (m *mockQuoteRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.QuoteSummary, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockQuoteRepo) Update(ctx context.Context, edit domain.QuoteEdit) (domain.Quote, error) {
	return m.update(ctx, edit)
}

// compile-time check: mockQuoteRepo must satisfy repo.QuoteRepo.
var _ repo.QuoteRepo = (*mockQuoteRepo)(nil)

// mockReferenceRepo serves rates from in-memory tables. The err field, when
// set, is returned by every method to simulate a failing store.
type mockReferenceRepo struct {
	base         *domain.BasePremium
	tripTypes    []domain.TripType
	excesses     []domain.Excess
	destinations []domain.Destination
	ages         []domain.Bracket
	durations    []domain.Bracket
	covers       []domain.Cover
	err          error
}

func (m *mockReferenceRepo) BasePremium(_ context.Context) (domain.BasePremium, error) {
	if m.err != nil {
		return domain.BasePremium{}, m.err
	}
	if m.base == nil {
		return domain.BasePremium{}, domain.ErrNotFound
	}
	return *m.base, nil
}

func (m *mockReferenceRepo) TripType(_ context.Context, id int64) (domain.TripType, error) {
	return findByID(m.err, m.tripTypes, id, func(t domain.TripType) int64 { return t.ID })
}

func (m *mockReferenceRepo) Excess(_ context.Context, id int64) (domain.Excess, error) {
	return findByID(m.err, m.excesses, id, func(e domain.Excess) int64 { return e.ID })
}

func (m *mockReferenceRepo) Cover(_ context.Context, id int64) (domain.Cover, error) {
	return findByID(m.err, m.covers, id, func(c domain.Cover) int64 { return c.ID })
}

func (m *mockReferenceRepo) DestinationsByIDs(_ context.Context, ids []int64) ([]domain.Destination, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Destination
	for _, d := range m.destinations {
		if slices.Contains(ids, d.ID) {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b domain.Destination) int {
		if c := cmp.Compare(b.Zone, a.Zone); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *mockReferenceRepo) AgeBrackets(_ context.Context) ([]domain.Bracket, error) {
	return m.ages, m.err
}
func (m *mockReferenceRepo) DurationBrackets(_ context.Context) ([]domain.Bracket, error) {
	return m.durations, m.err
}
func (m *mockReferenceRepo) ListCovers(_ context.Context) ([]domain.Cover, error) {
	return m.covers, m.err
}
func (m *mockReferenceRepo) ListTripTypes(_ context.Context) ([]domain.TripType, error) {
	return m.tripTypes, m.err
}
func (m *mockReferenceRepo) ListExcesses(_ context.Context) ([]domain.Excess, error) {
	return m.excesses, m.err
}
func (m *mockReferenceRepo) ListDestinations(_ context.Context) ([]domain.Destination, error) {
	return m.destinations, m.err
}

// compile-time check: mockReferenceRepo must satisfy repo.ReferenceRepo.
var _ repo.ReferenceRepo = (*mockReferenceRepo)(nil)

func findByID[T any](err error, rows []T, id int64, key func(T) int64) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	for _, r := range rows {
		if key(r) == id {
			return r, nil
		}
	}
	return zero, domain.ErrNotFound
}

// spyMetrics records what the service reports.
type spyMetrics struct {
	created    int
	rejections []int
	priced     []bool
}

func (s *spyMetrics) QuoteCreated()                   { s.created++ }
func (s *spyMetrics) ValidationRejected(messages int) { s.rejections = append(s.rejections, messages) }
func (s *spyMetrics) ObservePremiumCalculation(_ time.Time, priced bool) {
	s.priced = append(s.priced, priced)
}

// ---- fixtures --------------------------------------------------------------

const baseMultiplier = 1.92413120908991

// Destination ids in the standard reference fixture.
const (
	destZone1 int64 = 10 // multiplier 1.4, cruise 25, ski 25
	destZone3 int64 = 20 // multiplier 2.0, cruise 40, no ski rate
	destZone2 int64 = 30 // multiplier 1.7, cruise 30, ski 20
	destNoMul int64 = 40 // zone 4, no multiplier
)

func ptr[T any](v T) *T { return &v }

// newReferenceRepo returns exhaustive reference data where every multiplier
// except the destination's and the cover's is 1.0.
func newReferenceRepo() *mockReferenceRepo {
	return &mockReferenceRepo{
		base: &domain.BasePremium{ID: 1, Label: "Base", Type: domain.BasePremiumType, Multiplier: baseMultiplier},
		tripTypes: []domain.TripType{
			{ID: 1, Label: "Single trip", Multiplier: 1.0},
			{ID: 2, Label: "Annual multi-trip", Multiplier: 1.5},
		},
		excesses: []domain.Excess{
			{ID: 1, Label: "$0", Multiplier: 1.0},
			{ID: 2, Label: "$250", Multiplier: 0.9},
		},
		destinations: []domain.Destination{
			{ID: destZone1, Label: "New Zealand", Code: "NZ", Zone: 1, Multiplier: ptr(1.4), CruiseAddOnAmount: 25, SkiPerDayAmount: ptr(25.0)},
			{ID: destZone3, Label: "Asia", Code: "AS", Zone: 3, Multiplier: ptr(2.0), CruiseAddOnAmount: 40},
			{ID: destZone2, Label: "Pacific", Code: "PC", Zone: 2, Multiplier: ptr(1.7), CruiseAddOnAmount: 30, SkiPerDayAmount: ptr(20.0)},
			{ID: destNoMul, Label: "Antarctica", Code: "AQ", Zone: 4, CruiseAddOnAmount: 10},
		},
		ages:      []domain.Bracket{{ID: 1, Min: 1, Max: 84, Multiplier: 1.0}},
		durations: []domain.Bracket{{ID: 1, Min: 1, Max: 731, Multiplier: 1.0}},
		covers: []domain.Cover{
			{ID: 1, Label: "Basic", Multiplier: 1.0},
			{ID: 2, Label: "Comprehensive", Multiplier: 1.5},
		},
	}
}

// today is the fixed "now" every validator in these tests sees.
var today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return today.Add(14 * time.Hour) }

func day(offset int) time.Time { return today.AddDate(0, 0, offset) }

func isoDay(offset int) string { return day(offset).Format("2006-01-02") }
