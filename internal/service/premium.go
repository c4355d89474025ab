package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/pkordes/travel-quote/backend/internal/domain"
	"github.com/pkordes/travel-quote/backend/internal/repo"
)

// PremiumCalculator prices a quote for every cover tier from the current
// reference data. It is lenient: a quote it cannot price yields an empty
// result, and a traveller whose rates are missing contributes zero. Only a
// failing store returns an error.
//
// Reference data is read on every call and never cached.
type PremiumCalculator struct {
	ref repo.ReferenceRepo
}

// NewPremiumCalculator constructs a PremiumCalculator reading rates from ref.
func NewPremiumCalculator(ref repo.ReferenceRepo) *PremiumCalculator {
	return &PremiumCalculator{ref: ref}
}

// rates holds every lookup a calculation needs. Nil pointers mark rates the
// reference data does not have.
type rates struct {
	base        domain.BasePremium
	tripType    *domain.TripType
	excess      *domain.Excess
	destination *domain.Destination
	ages        domain.BracketTable
	duration    *domain.Bracket
}

// Calculate returns the premium for every cover, keyed by cover id.
// The result is empty when the spec lacks travellers, either trip date,
// destinations, a trip type or an excess, or when there is no base premium.
func (c *PremiumCalculator) Calculate(ctx context.Context, spec domain.QuoteSpec) (domain.Premiums, error) {
	if !priceable(spec) {
		return domain.Premiums{}, nil
	}

	base, err := optional(c.ref.BasePremium(ctx))
	if err != nil {
		return nil, fmt.Errorf("service.PremiumCalculator.Calculate: %w", err)
	}
	if base == nil {
		return domain.Premiums{}, nil
	}

	r, err := c.loadRates(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("service.PremiumCalculator.Calculate: %w", err)
	}
	r.base = *base

	covers, err := c.ref.ListCovers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.PremiumCalculator.Calculate: %w", err)
	}

	// Add-ons do not depend on the cover tier.
	cruise := r.cruiseAddOn(spec)
	snow := r.snowAddOn(spec)

	premiums := make(domain.Premiums, len(covers))
	for _, cover := range covers {
		total := 0.0
		for _, t := range spec.Travellers {
			total += r.travellerPremium(t, cover)
		}
		premiums[cover.ID] = domain.PremiumResult{
			BasePremium:  round2(total),
			CruiseAddOn:  round2(cruise),
			SnowAddOn:    round2(snow),
			FinalPremium: round2(total + cruise + snow),
		}
	}
	return premiums, nil
}

// HighestZoneDestination returns the destination with the highest zone among
// ids, or nil when none of them exist. Ties go to the store's ordering.
func (c *PremiumCalculator) HighestZoneDestination(ctx context.Context, ids []int64) (*domain.Destination, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	dests, err := c.ref.DestinationsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service.PremiumCalculator.HighestZoneDestination: %w", err)
	}
	if len(dests) == 0 {
		return nil, nil
	}
	return &dests[0], nil
}

// TripDurationDays counts both the start and end date, so a trip starting and
// ending on the same day lasts 1 day. It is 0 when either date is missing.
func TripDurationDays(spec domain.QuoteSpec) int {
	if spec.StartDate == nil || spec.EndDate == nil {
		return 0
	}
	return daysBetween(*spec.StartDate, *spec.EndDate) + 1
}

func priceable(spec domain.QuoteSpec) bool {
	return len(spec.Travellers) > 0 &&
		spec.StartDate != nil && spec.EndDate != nil &&
		len(spec.DestinationIDs) > 0 &&
		spec.TripTypeID != nil && spec.ExcessID != nil
}

func (c *PremiumCalculator) loadRates(ctx context.Context, spec domain.QuoteSpec) (rates, error) {
	var (
		r   rates
		err error
	)
	if r.tripType, err = optional(c.ref.TripType(ctx, *spec.TripTypeID)); err != nil {
		return rates{}, err
	}
	if r.excess, err = optional(c.ref.Excess(ctx, *spec.ExcessID)); err != nil {
		return rates{}, err
	}
	if r.destination, err = c.HighestZoneDestination(ctx, spec.DestinationIDs); err != nil {
		return rates{}, err
	}

	ages, err := c.ref.AgeBrackets(ctx)
	if err != nil {
		return rates{}, err
	}
	r.ages = domain.NewBracketTable(ages)

	durations, err := c.ref.DurationBrackets(ctx)
	if err != nil {
		return rates{}, err
	}
	if b, ok := domain.NewBracketTable(durations).Find(TripDurationDays(spec)); ok {
		r.duration = &b
	}
	return r, nil
}

// travellerPremium multiplies every rate for one traveller under one cover.
// Any missing rate makes the traveller contribute exactly zero.
func (r rates) travellerPremium(t domain.Traveller, cover domain.Cover) float64 {
	age, ok := r.ages.Find(t.Age)
	if !ok || r.duration == nil || r.destination == nil || r.destination.Multiplier == nil ||
		r.tripType == nil || r.excess == nil {
		return 0
	}
	return r.base.Multiplier *
		r.excess.Multiplier *
		age.Multiplier *
		r.duration.Multiplier *
		*r.destination.Multiplier *
		r.tripType.Multiplier *
		cover.Multiplier
}

// cruiseAddOn is the highest-zone destination's cruise amount per traveller.
func (r rates) cruiseAddOn(spec domain.QuoteSpec) float64 {
	if !spec.Cruise || r.destination == nil {
		return 0
	}
	return r.destination.CruiseAddOnAmount * float64(len(spec.Travellers))
}

// snowAddOn charges the destination's ski amount per traveller per snow day,
// counting both snow dates. An inverted snow range charges nothing.
func (r rates) snowAddOn(spec domain.QuoteSpec) float64 {
	if !spec.Snow || spec.SnowStartDate == nil || spec.SnowEndDate == nil {
		return 0
	}
	if r.destination == nil || r.destination.SkiPerDayAmount == nil {
		return 0
	}
	days := daysBetween(*spec.SnowStartDate, *spec.SnowEndDate) + 1
	if days <= 0 {
		return 0
	}
	return *r.destination.SkiPerDayAmount * float64(days) * float64(len(spec.Travellers))
}

// optional turns a domain.ErrNotFound lookup into a nil result.
func optional[T any](v T, err error) (*T, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
