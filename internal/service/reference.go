package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkordes/travel-quote/backend/internal/domain"
	"github.com/pkordes/travel-quote/backend/internal/repo"
)

// MaxTripDurationDays is the longest trip the duration brackets must price:
// the validator allows end - start up to two years, counted inclusively.
const MaxTripDurationDays = MaxTripDurationYears*365 + 1

// ReferenceService exposes the rate tables needed to build a quote form and
// checks that the bracket tables are usable.
type ReferenceService struct {
	ref repo.ReferenceRepo
}

// NewReferenceService constructs a ReferenceService backed by ref.
func NewReferenceService(ref repo.ReferenceRepo) *ReferenceService {
	return &ReferenceService{ref: ref}
}

// FormData returns every trip type, excess and cover ordered by id, and every
// destination ordered by label. Slices are never nil.
func (s *ReferenceService) FormData(ctx context.Context) (domain.ReferenceData, error) {
	var (
		data domain.ReferenceData
		err  error
	)
	if data.TripTypes, err = s.ref.ListTripTypes(ctx); err != nil {
		return domain.ReferenceData{}, fmt.Errorf("service.ReferenceService.FormData: %w", err)
	}
	if data.Excesses, err = s.ref.ListExcesses(ctx); err != nil {
		return domain.ReferenceData{}, fmt.Errorf("service.ReferenceService.FormData: %w", err)
	}
	if data.Destinations, err = s.ref.ListDestinations(ctx); err != nil {
		return domain.ReferenceData{}, fmt.Errorf("service.ReferenceService.FormData: %w", err)
	}
	if data.Covers, err = s.ref.ListCovers(ctx); err != nil {
		return domain.ReferenceData{}, fmt.Errorf("service.ReferenceService.FormData: %w", err)
	}

	data.TripTypes = nonNil(data.TripTypes)
	data.Excesses = nonNil(data.Excesses)
	data.Destinations = nonNil(data.Destinations)
	data.Covers = nonNil(data.Covers)
	return data, nil
}

// ErrBracketTable wraps every problem CheckBrackets finds.
var ErrBracketTable = errors.New("bracket table")

// CheckBrackets verifies the age brackets cover every valid traveller age and
// the duration brackets cover every allowed trip length, each exactly once.
// A value with no bracket silently prices at zero, so a non-nil result should
// be surfaced to operators. Problems are joined; each wraps ErrBracketTable.
func (s *ReferenceService) CheckBrackets(ctx context.Context) error {
	ages, err := s.ref.AgeBrackets(ctx)
	if err != nil {
		return fmt.Errorf("service.ReferenceService.CheckBrackets: %w", err)
	}
	durations, err := s.ref.DurationBrackets(ctx)
	if err != nil {
		return fmt.Errorf("service.ReferenceService.CheckBrackets: %w", err)
	}

	var errs []error
	for _, p := range domain.NewBracketTable(ages).Check(domain.MinTravellerAge, domain.MaxTravellerAge) {
		errs = append(errs, fmt.Errorf("%w: ages: %s", ErrBracketTable, p))
	}
	for _, p := range domain.NewBracketTable(durations).Check(1, MaxTripDurationDays) {
		errs = append(errs, fmt.Errorf("%w: durations: %s", ErrBracketTable, p))
	}
	return errors.Join(errs...)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
