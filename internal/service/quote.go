// Package service contains the business logic for the travel quote API.
// Services validate submissions, price quotes and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-quote/backend/internal/domain"
	"github.com/pkordes/travel-quote/backend/internal/repo"
)

// QuoteMetrics receives quote lifecycle events. *metrics.Metrics satisfies it.
type QuoteMetrics interface {
	QuoteCreated()
	ValidationRejected(messages int)
	ObservePremiumCalculation(start time.Time, priced bool)
}

type nopMetrics struct{}

func (nopMetrics) QuoteCreated()                             {}
func (nopMetrics) ValidationRejected(int)                    {}
func (nopMetrics) ObservePremiumCalculation(time.Time, bool) {}

// QuoteService creates, reads and updates quotes. Premiums are never stored:
// every view is priced from the quote's current fields and the current
// reference data.
type QuoteService struct {
	quotes    repo.QuoteRepo
	ref       repo.ReferenceRepo
	validator *Validator
	calc      *PremiumCalculator
	metrics   QuoteMetrics
	log       *slog.Logger
}

// NewQuoteService constructs a QuoteService. A nil metrics discards events and
// a nil log discards log output.
func NewQuoteService(
	quotes repo.QuoteRepo,
	ref repo.ReferenceRepo,
	validator *Validator,
	calc *PremiumCalculator,
	m QuoteMetrics,
	log *slog.Logger,
) *QuoteService {
	if m == nil {
		m = nopMetrics{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &QuoteService{quotes: quotes, ref: ref, validator: validator, calc: calc, metrics: m, log: log}
}

// Create validates the submission, checks that its trip type and excess
// exist, then persists it. The cover defaults to the first cover tier when
// none is submitted.
// Returns a *domain.ValidationError (errors.Is domain.ErrValidation) listing
// every violated rule when the submission is rejected.
func (s *QuoteService) Create(ctx context.Context, sub domain.QuoteSubmission) (domain.QuoteView, error) {
	res := s.validator.Validate(sub)
	if !res.Valid() {
		s.rejected(ctx, len(res.Errors))
		return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Create: %w", res.Err())
	}

	tripTypeID, excessID, msgs, err := s.checkReferences(ctx, sub)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Create: %w", err)
	}
	if len(msgs) > 0 {
		s.rejected(ctx, len(msgs))
		return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Create: %w", domain.NewValidationError(msgs...))
	}

	coverID, err := s.coverOrDefault(ctx, sub.CoverID)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Create: %w", err)
	}

	edit := domain.QuoteEdit{Quote: domain.Quote{
		Age:           res.Travellers[0].Age,
		Travellers:    res.Travellers,
		StartDate:     res.StartDate,
		EndDate:       res.EndDate,
		TripTypeID:    tripTypeID,
		ExcessID:      excessID,
		CoverID:       coverID,
		Cruise:        sub.Cruise,
		Snow:          sub.Snow,
		SnowStartDate: parseDate(sub.SnowStartDate),
		SnowEndDate:   parseDate(sub.SnowEndDate),
	}}
	edit.StageDestinations(sub.DestinationIDs)

	quote, err := s.quotes.Create(ctx, edit)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Create: %w", err)
	}
	s.metrics.QuoteCreated()
	s.log.InfoContext(ctx, "quote created",
		"quote_id", quote.ID,
		"travellers", len(quote.Travellers),
		"destinations", len(quote.DestinationIDs),
	)

	view, err := s.view(ctx, quote)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Create: %w", err)
	}
	return view, nil
}

// Preview validates the submission and prices it without saving anything.
func (s *QuoteService) Preview(ctx context.Context, sub domain.QuoteSubmission) (domain.Pricing, error) {
	res := s.validator.Validate(sub)
	if !res.Valid() {
		s.rejected(ctx, len(res.Errors))
		return domain.Pricing{}, fmt.Errorf("service.QuoteService.Preview: %w", res.Err())
	}

	start, end := res.StartDate, res.EndDate
	spec := domain.QuoteSpec{
		Travellers:     res.Travellers,
		StartDate:      &start,
		EndDate:        &end,
		DestinationIDs: res.DestinationIDs,
		TripTypeID:     domain.ParseID(sub.TripTypeID),
		ExcessID:       domain.ParseID(sub.ExcessID),
		Cruise:         sub.Cruise,
		Snow:           sub.Snow,
		SnowStartDate:  parseDate(sub.SnowStartDate),
		SnowEndDate:    parseDate(sub.SnowEndDate),
	}
	pricing, err := s.price(ctx, uuid.Nil, spec)
	if err != nil {
		return domain.Pricing{}, fmt.Errorf("service.QuoteService.Preview: %w", err)
	}
	return pricing, nil
}

// Get returns a saved quote priced against the current reference data.
// Returns domain.ErrNotFound if no quote with that ID exists.
func (s *QuoteService) Get(ctx context.Context, id uuid.UUID) (domain.QuoteView, error) {
	quote, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Get: %w", err)
	}
	view, err := s.view(ctx, quote)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Get: %w", err)
	}
	return view, nil
}

// Update applies the add-on flags, snow dates and cover of upd to a saved
// quote and returns it repriced. Nil fields keep their stored value; a blank
// snow date or cover clears it. Destinations are left as stored.
// Returns domain.ErrNotFound if no quote with that ID exists.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, upd domain.QuoteUpdate) (domain.QuoteView, error) {
	current, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Update: %w", err)
	}

	q := current
	if upd.Cruise != nil {
		q.Cruise = *upd.Cruise
	}
	if upd.Snow != nil {
		q.Snow = *upd.Snow
	}
	if upd.SnowStartDate != nil {
		q.SnowStartDate = parseDate(*upd.SnowStartDate)
	}
	if upd.SnowEndDate != nil {
		q.SnowEndDate = parseDate(*upd.SnowEndDate)
	}
	if upd.CoverID != nil {
		if strings.TrimSpace(*upd.CoverID) == "" {
			q.CoverID = nil
		} else if q.CoverID = domain.ParseID(*upd.CoverID); q.CoverID == nil {
			return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Update: %w",
				domain.NewValidationError("Cover must exist."))
		}
	}

	saved, err := s.quotes.Update(ctx, domain.QuoteEdit{Quote: q})
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Update: %w", err)
	}
	view, err := s.view(ctx, saved)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("service.QuoteService.Update: %w", err)
	}
	return view, nil
}

// List returns one page of saved quotes, newest first.
// Quotes is never nil so callers can safely range over it.
func (s *QuoteService) List(ctx context.Context, p domain.PaginationParams) (domain.QuotePage, error) {
	summaries, total, err := s.quotes.ListPaged(ctx, p)
	if err != nil {
		return domain.QuotePage{}, fmt.Errorf("service.QuoteService.List: %w", err)
	}
	if summaries == nil {
		summaries = []domain.QuoteSummary{}
	}
	return domain.QuotePage{Quotes: summaries, Params: p, Total: total}, nil
}

// checkReferences resolves the submitted trip type and excess. Ids that are
// not integers, or that name no row, produce a message instead of an error.
func (s *QuoteService) checkReferences(ctx context.Context, sub domain.QuoteSubmission) (tripTypeID, excessID int64, msgs []string, err error) {
	if id := domain.ParseID(sub.TripTypeID); id != nil {
		_, lookupErr := s.ref.TripType(ctx, *id)
		switch {
		case lookupErr == nil:
			tripTypeID = *id
		case errors.Is(lookupErr, domain.ErrNotFound):
			msgs = append(msgs, "Trip type must exist.")
		default:
			return 0, 0, nil, lookupErr
		}
	} else {
		msgs = append(msgs, "Trip type must exist.")
	}

	if id := domain.ParseID(sub.ExcessID); id != nil {
		_, lookupErr := s.ref.Excess(ctx, *id)
		switch {
		case lookupErr == nil:
			excessID = *id
		case errors.Is(lookupErr, domain.ErrNotFound):
			msgs = append(msgs, "Excess must exist.")
		default:
			return 0, 0, nil, lookupErr
		}
	} else {
		msgs = append(msgs, "Excess must exist.")
	}
	return tripTypeID, excessID, msgs, nil
}

// coverOrDefault returns the submitted cover id, or the first cover tier when
// the submission has none. It is nil only when there are no cover tiers.
func (s *QuoteService) coverOrDefault(ctx context.Context, raw string) (*int64, error) {
	if id := domain.ParseID(raw); id != nil {
		return id, nil
	}
	covers, err := s.ref.ListCovers(ctx)
	if err != nil {
		return nil, err
	}
	if len(covers) == 0 {
		return nil, nil
	}
	id := covers[0].ID
	return &id, nil
}

func (s *QuoteService) view(ctx context.Context, q domain.Quote) (domain.QuoteView, error) {
	pricing, err := s.price(ctx, q.ID, domain.SpecFromQuote(q))
	if err != nil {
		return domain.QuoteView{}, err
	}
	return domain.QuoteView{Quote: q, Pricing: pricing}, nil
}

// price runs the calculator and collects everything a quote display needs.
// id is only used for logging and is uuid.Nil for unsaved quotes.
func (s *QuoteService) price(ctx context.Context, id uuid.UUID, spec domain.QuoteSpec) (domain.Pricing, error) {
	start := time.Now()
	premiums, err := s.calc.Calculate(ctx, spec)
	if err != nil {
		return domain.Pricing{}, err
	}
	s.metrics.ObservePremiumCalculation(start, len(premiums) > 0)
	if len(premiums) == 0 {
		s.log.InfoContext(ctx, "premiums not computable", "quote_id", id)
	}

	covers, err := s.ref.ListCovers(ctx)
	if err != nil {
		return domain.Pricing{}, err
	}
	dest, err := s.calc.HighestZoneDestination(ctx, spec.DestinationIDs)
	if err != nil {
		return domain.Pricing{}, err
	}
	return domain.Pricing{
		Premiums:               domain.Priced(covers, premiums),
		HighestZoneDestination: dest,
		TripDurationDays:       TripDurationDays(spec),
	}, nil
}

func (s *QuoteService) rejected(ctx context.Context, n int) {
	s.metrics.ValidationRejected(n)
	s.log.InfoContext(ctx, "quote rejected", "errors", n)
}
