package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-quote/backend/internal/domain"
	"github.com/pkordes/travel-quote/backend/internal/service"
)

// ---- helpers ---------------------------------------------------------------

// newQuoteService wires a QuoteService to the given repos with a fixed clock.
// Pass nil for m when the test does not check metrics.
func newQuoteService(quotes *mockQuoteRepo, ref *mockReferenceRepo, m *spyMetrics) *service.QuoteService {
	var qm service.QuoteMetrics
	if m != nil {
		qm = m
	}
	return service.NewQuoteService(
		quotes,
		ref,
		service.NewValidator(time.UTC, fixedClock),
		service.NewPremiumCalculator(ref),
		qm,
		nil,
	)
}

// storingRepo echoes what it is given back as the persisted record, the way
// the database would: a fresh id and the staged destinations.
func storingRepo(saved *domain.QuoteEdit) *mockQuoteRepo {
	return &mockQuoteRepo{
		create: func(_ context.Context, edit domain.QuoteEdit) (domain.Quote, error) {
			*saved = edit
			q := edit.Quote
			q.ID = uuid.New()
			q.DestinationIDs = edit.DestinationIDs()
			q.CreatedAt = fixedClock()
			q.UpdatedAt = q.CreatedAt
			return q, nil
		},
	}
}

func storedQuote() domain.Quote {
	return domain.Quote{
		ID:             uuid.New(),
		Age:            30,
		Travellers:     travellers(30),
		StartDate:      day(30),
		EndDate:        day(37),
		DestinationIDs: []int64{destZone1},
		TripTypeID:     1,
		ExcessID:       1,
		CoverID:        ptr(int64(1)),
	}
}

// ---- Create ----------------------------------------------------------------

func TestQuoteService_Create_OK(t *testing.T) {
	var saved domain.QuoteEdit
	m := &spyMetrics{}
	svc := newQuoteService(storingRepo(&saved), newReferenceRepo(), m)

	sub := validSubmission()
	sub.Travellers = ages("", "45", "12")
	sub.DestinationIDs = []string{"10", "", "20"}
	sub.Cruise = true

	got, err := svc.Create(context.Background(), sub)

	require.NoError(t, err)
	assert.Equal(t, 45, saved.Quote.Age, "age is the first priced traveller")
	assert.Equal(t, travellers(45, 12), saved.Quote.Travellers)
	assert.Equal(t, []int64{10, 20}, saved.PendingDestinationIDs)
	require.NotNil(t, saved.Quote.CoverID)
	assert.Equal(t, int64(1), *saved.Quote.CoverID, "cover defaults to the first tier")
	assert.True(t, saved.Quote.Cruise)

	assert.NotEqual(t, uuid.Nil, got.Quote.ID)
	require.Len(t, got.Premiums, 2)
	assert.Equal(t, "Basic", got.Premiums[0].Cover.Label)
	assert.Equal(t, 80.0, got.Premiums[0].Premium.CruiseAddOn, "zone 3 cruise rate for 2 travellers")
	require.NotNil(t, got.HighestZoneDestination)
	assert.Equal(t, destZone3, got.HighestZoneDestination.ID)
	assert.Equal(t, 10, got.TripDurationDays)

	assert.Equal(t, 1, m.created)
	assert.Equal(t, []bool{true}, m.priced)
}

func TestQuoteService_Create_ExplicitCoverAndSnowDates(t *testing.T) {
	var saved domain.QuoteEdit
	svc := newQuoteService(storingRepo(&saved), newReferenceRepo(), nil)

	sub := validSubmission()
	sub.CoverID = "2"
	sub.Snow = true
	sub.SnowStartDate = isoDay(23)
	sub.SnowEndDate = isoDay(26)

	got, err := svc.Create(context.Background(), sub)

	require.NoError(t, err)
	require.NotNil(t, saved.Quote.CoverID)
	assert.Equal(t, int64(2), *saved.Quote.CoverID)
	require.NotNil(t, saved.Quote.SnowStartDate)
	assert.Equal(t, day(23), *saved.Quote.SnowStartDate)
	assert.Equal(t, day(26), *saved.Quote.SnowEndDate)
	assert.Equal(t, 100.0, got.Premiums[0].Premium.SnowAddOn)
}

func TestQuoteService_Create_ValidationFailure(t *testing.T) {
	m := &spyMetrics{}
	// create is nil: the repo must not be reached.
	svc := newQuoteService(&mockQuoteRepo{}, newReferenceRepo(), m)

	sub := validSubmission()
	sub.Travellers = nil
	sub.ExcessID = ""

	_, err := svc.Create(context.Background(), sub)

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []string{
		"At least one traveller is required.",
		"Excess is required.",
	}, domain.ValidationMessages(err))
	assert.Equal(t, []int{2}, m.rejections)
	assert.Zero(t, m.created)
}

func TestQuoteService_Create_UnknownReferences(t *testing.T) {
	m := &spyMetrics{}
	svc := newQuoteService(&mockQuoteRepo{}, newReferenceRepo(), m)

	sub := validSubmission()
	sub.TripTypeID = "99"
	sub.ExcessID = "abc"

	_, err := svc.Create(context.Background(), sub)

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []string{"Trip type must exist.", "Excess must exist."}, domain.ValidationMessages(err))
	assert.Equal(t, []int{2}, m.rejections)
}

func TestQuoteService_Create_ReferenceStoreError(t *testing.T) {
	ref := newReferenceRepo()
	ref.err = errors.New("connection refused")
	svc := newQuoteService(&mockQuoteRepo{}, ref, nil)

	_, err := svc.Create(context.Background(), validSubmission())

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestQuoteService_Create_RepoError(t *testing.T) {
	dbErr := errors.New("connection refused")
	quotes := &mockQuoteRepo{
		create: func(_ context.Context, _ domain.QuoteEdit) (domain.Quote, error) {
			return domain.Quote{}, dbErr
		},
	}
	svc := newQuoteService(quotes, newReferenceRepo(), nil)

	_, err := svc.Create(context.Background(), validSubmission())

	assert.ErrorIs(t, err, dbErr)
}

func TestQuoteService_Create_StoreRejectsDestination(t *testing.T) {
	quotes := &mockQuoteRepo{
		create: func(_ context.Context, _ domain.QuoteEdit) (domain.Quote, error) {
			return domain.Quote{}, domain.NewValidationError("Destination must exist.")
		},
	}
	svc := newQuoteService(quotes, newReferenceRepo(), nil)

	_, err := svc.Create(context.Background(), validSubmission())

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []string{"Destination must exist."}, domain.ValidationMessages(err))
}

// ---- Preview ---------------------------------------------------------------

func TestQuoteService_Preview(t *testing.T) {
	svc := newQuoteService(&mockQuoteRepo{}, newReferenceRepo(), nil)

	got, err := svc.Preview(context.Background(), validSubmission())

	require.NoError(t, err)
	require.Len(t, got.Premiums, 2)
	assert.Equal(t, 2.69, got.Premiums[0].Premium.FinalPremium)
	assert.Equal(t, 10, got.TripDurationDays)
}

func TestQuoteService_Preview_ValidationFailure(t *testing.T) {
	svc := newQuoteService(&mockQuoteRepo{}, newReferenceRepo(), nil)

	sub := validSubmission()
	sub.DestinationIDs = nil

	_, err := svc.Preview(context.Background(), sub)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- Get -------------------------------------------------------------------

func TestQuoteService_Get_RepricesLive(t *testing.T) {
	stored := storedQuote()
	ref := newReferenceRepo()
	quotes := &mockQuoteRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Quote, error) {
			assert.Equal(t, stored.ID, id)
			return stored, nil
		},
	}
	svc := newQuoteService(quotes, ref, nil)

	first, err := svc.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.69, first.Premiums[0].Premium.FinalPremium)
	assert.Equal(t, stored, first.Quote)

	// A rate change applies to the very next read.
	ref.base.Multiplier *= 2

	second, err := svc.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.39, second.Premiums[0].Premium.FinalPremium)
}

func TestQuoteService_Get_Unpriceable(t *testing.T) {
	stored := storedQuote()
	stored.DestinationIDs = []int64{}
	m := &spyMetrics{}
	quotes := &mockQuoteRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Quote, error) { return stored, nil },
	}
	svc := newQuoteService(quotes, newReferenceRepo(), m)

	got, err := svc.Get(context.Background(), stored.ID)

	require.NoError(t, err)
	assert.NotNil(t, got.Premiums)
	assert.Empty(t, got.Premiums)
	assert.Nil(t, got.HighestZoneDestination)
	assert.Equal(t, []bool{false}, m.priced)
}

func TestQuoteService_Get_NotFound(t *testing.T) {
	quotes := &mockQuoteRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Quote, error) {
			return domain.Quote{}, domain.ErrNotFound
		},
	}
	svc := newQuoteService(quotes, newReferenceRepo(), nil)

	_, err := svc.Get(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Update ----------------------------------------------------------------

// updatingRepo serves stored from GetByID and records the edit passed to Update.
func updatingRepo(stored domain.Quote, got *domain.QuoteEdit) *mockQuoteRepo {
	return &mockQuoteRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Quote, error) { return stored, nil },
		update: func(_ context.Context, edit domain.QuoteEdit) (domain.Quote, error) {
			*got = edit
			return edit.Quote, nil
		},
	}
}

func TestQuoteService_Update_AppliesFields(t *testing.T) {
	stored := storedQuote()
	var edit domain.QuoteEdit
	svc := newQuoteService(updatingRepo(stored, &edit), newReferenceRepo(), nil)

	got, err := svc.Update(context.Background(), stored.ID, domain.QuoteUpdate{
		Cruise:        ptr(true),
		Snow:          ptr(true),
		SnowStartDate: ptr(isoDay(31)),
		SnowEndDate:   ptr(isoDay(32)),
		CoverID:       ptr("2"),
	})

	require.NoError(t, err)
	assert.True(t, edit.Quote.Cruise)
	assert.True(t, edit.Quote.Snow)
	assert.Equal(t, day(31), *edit.Quote.SnowStartDate)
	assert.Equal(t, day(32), *edit.Quote.SnowEndDate)
	assert.Equal(t, int64(2), *edit.Quote.CoverID)
	assert.Nil(t, edit.PendingDestinationIDs, "destinations are not edited")

	p := got.Premiums[0].Premium
	assert.Equal(t, 25.0, p.CruiseAddOn)
	assert.Equal(t, 50.0, p.SnowAddOn)
}

func TestQuoteService_Update_NilFieldsUnchanged(t *testing.T) {
	stored := storedQuote()
	stored.Cruise = true
	stored.SnowStartDate = ptr(day(31))
	var edit domain.QuoteEdit
	svc := newQuoteService(updatingRepo(stored, &edit), newReferenceRepo(), nil)

	_, err := svc.Update(context.Background(), stored.ID, domain.QuoteUpdate{Snow: ptr(true)})

	require.NoError(t, err)
	assert.True(t, edit.Quote.Cruise)
	assert.True(t, edit.Quote.Snow)
	assert.Equal(t, stored.SnowStartDate, edit.Quote.SnowStartDate)
	assert.Equal(t, stored.CoverID, edit.Quote.CoverID)
}

func TestQuoteService_Update_BlankClears(t *testing.T) {
	stored := storedQuote()
	stored.Snow = true
	stored.SnowStartDate = ptr(day(31))
	stored.SnowEndDate = ptr(day(32))
	var edit domain.QuoteEdit
	svc := newQuoteService(updatingRepo(stored, &edit), newReferenceRepo(), nil)

	_, err := svc.Update(context.Background(), stored.ID, domain.QuoteUpdate{
		SnowStartDate: ptr(""),
		SnowEndDate:   ptr("  "),
		CoverID:       ptr(""),
	})

	require.NoError(t, err)
	assert.Nil(t, edit.Quote.SnowStartDate)
	assert.Nil(t, edit.Quote.SnowEndDate)
	assert.Nil(t, edit.Quote.CoverID)
}

func TestQuoteService_Update_InvalidCover(t *testing.T) {
	stored := storedQuote()
	quotes := &mockQuoteRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Quote, error) { return stored, nil },
	}
	svc := newQuoteService(quotes, newReferenceRepo(), nil)

	_, err := svc.Update(context.Background(), stored.ID, domain.QuoteUpdate{CoverID: ptr("gold")})

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []string{"Cover must exist."}, domain.ValidationMessages(err))
}

func TestQuoteService_Update_NotFound(t *testing.T) {
	quotes := &mockQuoteRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Quote, error) {
			return domain.Quote{}, domain.ErrNotFound
		},
	}
	svc := newQuoteService(quotes, newReferenceRepo(), nil)

	_, err := svc.Update(context.Background(), uuid.New(), domain.QuoteUpdate{Cruise: ptr(true)})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- List ------------------------------------------------------------------

func TestQuoteService_List(t *testing.T) {
	want := []domain.QuoteSummary{{ID: uuid.New(), Travellers: 2}}
	quotes := &mockQuoteRepo{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]domain.QuoteSummary, int64, error) {
			assert.Equal(t, 2, p.Page)
			return want, 21, nil
		},
	}
	svc := newQuoteService(quotes, newReferenceRepo(), nil)

	got, err := svc.List(context.Background(), domain.PaginationParams{Page: 2, Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, want, got.Quotes)
	assert.Equal(t, int64(21), got.Total)
	assert.Equal(t, 2, got.Params.Page)
}

func TestQuoteService_List_EmptyIsNotNil(t *testing.T) {
	quotes := &mockQuoteRepo{
		listPaged: func(_ context.Context, _ domain.PaginationParams) ([]domain.QuoteSummary, int64, error) {
			return nil, 0, nil
		},
	}
	svc := newQuoteService(quotes, newReferenceRepo(), nil)

	got, err := svc.List(context.Background(), domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.NotNil(t, got.Quotes)
	assert.Empty(t, got.Quotes)
}
