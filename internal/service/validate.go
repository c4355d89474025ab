package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/travel-quote/backend/internal/domain"
)

// Booking window limits.
const (
	MaxAdvanceBookingMonths = 18
	MaxTripDurationYears    = 2
)

// ValidationResult is the outcome of validating a quote submission.
//
// Errors lists every violated rule in evaluation order: travellers, dates,
// destinations, required fields. Travellers holds the submitted travellers
// whose age is within range, in submission order, and is filled in even when
// other rules fail.
type ValidationResult struct {
	Errors         []string
	Travellers     []domain.Traveller
	StartDate      time.Time
	EndDate        time.Time
	DestinationIDs []int64
}

// Valid reports whether no rule was violated.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns a *domain.ValidationError with every message, or nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return domain.NewValidationError(r.Errors...)
}

// Validator checks a raw quote submission against the business rules.
// It only checks that trip type and excess are present; whether they exist
// is decided by the store.
type Validator struct {
	now func() time.Time
	loc *time.Location
}

// NewValidator returns a Validator that takes "today" from now, in loc.
// A nil now uses time.Now; a nil loc uses UTC.
func NewValidator(loc *time.Location, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Validator{now: now, loc: loc}
}

// Validate runs every rule and accumulates all errors; no rule short-circuits
// another, except that unparsable dates skip the remaining date checks.
func (v *Validator) Validate(sub domain.QuoteSubmission) ValidationResult {
	var res ValidationResult
	res.Travellers = validateTravellers(sub.Travellers, &res.Errors)
	res.StartDate, res.EndDate = v.validateDates(sub.StartDate, sub.EndDate, &res.Errors)
	res.DestinationIDs = validateDestinations(sub.DestinationIDs, &res.Errors)
	validateRequired(sub, &res.Errors)
	return res
}

// validateTravellers drops travellers with a blank age, then checks each
// remaining one (numbered from 1). The adult check runs over every remaining
// traveller, including ones rejected for their age.
func validateTravellers(inputs []domain.TravellerInput, errs *[]string) []domain.Traveller {
	ages := make([]int, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Age) == "" {
			continue
		}
		ages = append(ages, leadingInt(in.Age))
	}

	if len(ages) == 0 {
		*errs = append(*errs, "At least one traveller is required.")
	}

	hasAdult := false
	for _, age := range ages {
		if age >= domain.AdultAge {
			hasAdult = true
			break
		}
	}

	travellers := make([]domain.Traveller, 0, len(ages))
	for i, age := range ages {
		n := i + 1
		inRange := age >= domain.MinTravellerAge && age <= domain.MaxTravellerAge
		if !inRange {
			*errs = append(*errs, fmt.Sprintf("Traveller %d: Age must be between %d and %d.",
				n, domain.MinTravellerAge, domain.MaxTravellerAge))
		}
		if age < domain.ChildAge && !hasAdult {
			*errs = append(*errs, fmt.Sprintf("Traveller %d: Children under %d must travel with an adult (%d+).",
				n, domain.ChildAge, domain.AdultAge))
		}
		if inRange {
			travellers = append(travellers, domain.Traveller{Age: age})
		}
	}
	return travellers
}

func (v *Validator) validateDates(rawStart, rawEnd string, errs *[]string) (time.Time, time.Time) {
	start, end := parseDate(rawStart), parseDate(rawEnd)
	if start == nil || end == nil {
		*errs = append(*errs, "Start date and end date are required.")
		return time.Time{}, time.Time{}
	}

	today := dateOf(v.now().In(v.loc))
	if end.Before(*start) {
		*errs = append(*errs, "End date must be after start date.")
	}
	if start.Before(today) {
		*errs = append(*errs, "Start date cannot be in the past.")
	}
	if start.After(addMonths(today, MaxAdvanceBookingMonths)) {
		*errs = append(*errs, fmt.Sprintf("Start date cannot be more than %d months in advance.", MaxAdvanceBookingMonths))
	}
	if daysBetween(*start, *end) > MaxTripDurationYears*365 {
		*errs = append(*errs, fmt.Sprintf("Trip duration cannot exceed %d years.", MaxTripDurationYears))
	}
	return *start, *end
}

// validateDestinations treats blank and non-integer ids as not selected.
func validateDestinations(raw []string, errs *[]string) []int64 {
	ids := domain.ParseIDs(raw)
	if len(ids) == 0 {
		*errs = append(*errs, "At least one destination must be selected.")
	}
	return ids
}

func validateRequired(sub domain.QuoteSubmission, errs *[]string) {
	if strings.TrimSpace(sub.TripTypeID) == "" {
		*errs = append(*errs, "Trip type is required.")
	}
	if strings.TrimSpace(sub.ExcessID) == "" {
		*errs = append(*errs, "Excess is required.")
	}
}

// leadingInt reads an optional sign and the leading decimal digits of s,
// ignoring leading whitespace and anything after the digits. Input with no
// leading digits is 0, so "30 years" is 30 and "abc" is 0.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	sign := 1
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		// Anything this large is out of range already; stop before overflow.
		if n < 1_000_000 {
			n = n*10 + int(s[i]-'0')
		}
	}
	return sign * n
}
