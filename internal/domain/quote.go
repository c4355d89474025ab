// Package domain contains the core data types for the travel quote service.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Age limits applied to travellers.
const (
	MinTravellerAge = 1
	MaxTravellerAge = 84
	ChildAge        = 16 // travellers younger than this need an adult
	AdultAge        = 21
)

// Traveller is a single insured person. Only the age affects the premium.
type Traveller struct {
	Age int `json:"age"`
}

// Quote is a persisted quote. DestinationIDs reflects the stored
// quotes_to_destinations association as it was last loaded.
type Quote struct {
	ID             uuid.UUID   `json:"id"`
	Age            int         `json:"age"` // first traveller's age
	Travellers     []Traveller `json:"travellers"`
	StartDate      time.Time   `json:"start_date"`
	EndDate        time.Time   `json:"end_date"`
	DestinationIDs []int64     `json:"destination_ids"`
	TripTypeID     int64       `json:"trip_type_id"`
	ExcessID       int64       `json:"excess_id"`
	CoverID        *int64      `json:"cover_id,omitempty"`
	Cruise         bool        `json:"cruise"`
	Snow           bool        `json:"snow"`
	SnowStartDate  *time.Time  `json:"snow_start_date,omitempty"`
	SnowEndDate    *time.Time  `json:"snow_end_date,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// PricedTravellers returns the travellers to price for a stored quote. Quotes
// without a traveller list price a single traveller of Age; a stored traveller
// with no age falls back to Age as well.
func (q Quote) PricedTravellers() []Traveller {
	if len(q.Travellers) == 0 {
		return []Traveller{{Age: q.Age}}
	}
	out := make([]Traveller, len(q.Travellers))
	for i, t := range q.Travellers {
		out[i] = t
		if t.Age == 0 {
			out[i].Age = q.Age
		}
	}
	return out
}

// QuoteEdit is an in-flight create or update of a Quote.
//
// PendingDestinationIDs is held only in memory until the edit is saved. When
// non-nil, saving replaces the stored destination association with exactly
// these ids; when nil, the stored association is left as is.
type QuoteEdit struct {
	Quote                 Quote
	PendingDestinationIDs []int64
}

// StageDestinations sets the pending destination ids from raw submitted
// values. Blank and non-integer values are discarded.
func (e *QuoteEdit) StageDestinations(raw []string) {
	e.PendingDestinationIDs = ParseIDs(raw)
}

// DestinationIDs returns the ids the quote will have once saved.
func (e QuoteEdit) DestinationIDs() []int64 {
	if e.PendingDestinationIDs != nil {
		return e.PendingDestinationIDs
	}
	return e.Quote.DestinationIDs
}

// QuoteUpdate holds the only fields a saved quote allows changing. Nil
// fields are left unchanged; blank snow dates and a blank cover clear the
// stored value.
type QuoteUpdate struct {
	Cruise        *bool
	Snow          *bool
	SnowStartDate *string
	SnowEndDate   *string
	CoverID       *string
}

// QuoteSummary is a list-view row for a saved quote.
type QuoteSummary struct {
	ID             uuid.UUID `json:"id"`
	Travellers     int       `json:"travellers"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TripTypeID     int64     `json:"trip_type_id"`
	DestinationIDs []int64   `json:"destination_ids"`
	CreatedAt      time.Time `json:"created_at"`
}

// TravellerInput is a traveller exactly as submitted; Age is the raw field value.
type TravellerInput struct {
	Age string
}

// QuoteSubmission is a raw, unvalidated quote request. Ids and dates are kept
// as submitted so validation can report on them rather than fail decoding.
type QuoteSubmission struct {
	Travellers     []TravellerInput
	StartDate      string
	EndDate        string
	DestinationIDs []string
	TripTypeID     string
	ExcessID       string
	CoverID        string
	Cruise         bool
	Snow           bool
	SnowStartDate  string
	SnowEndDate    string
}

// QuoteSpec is everything the premium calculator reads from a quote. Nil
// pointers mean the value is absent or could not be parsed.
type QuoteSpec struct {
	Travellers     []Traveller
	StartDate      *time.Time
	EndDate        *time.Time
	DestinationIDs []int64
	TripTypeID     *int64
	ExcessID       *int64
	Cruise         bool
	Snow           bool
	SnowStartDate  *time.Time
	SnowEndDate    *time.Time
}

// SpecFromQuote builds the pricing input for a stored quote.
func SpecFromQuote(q Quote) QuoteSpec {
	start, end := q.StartDate, q.EndDate
	tripType, excess := q.TripTypeID, q.ExcessID
	spec := QuoteSpec{
		Travellers:     q.PricedTravellers(),
		DestinationIDs: q.DestinationIDs,
		TripTypeID:     &tripType,
		ExcessID:       &excess,
		Cruise:         q.Cruise,
		Snow:           q.Snow,
		SnowStartDate:  q.SnowStartDate,
		SnowEndDate:    q.SnowEndDate,
	}
	if !start.IsZero() {
		spec.StartDate = &start
	}
	if !end.IsZero() {
		spec.EndDate = &end
	}
	return spec
}

// ParseID parses a submitted reference id. Blank or non-integer input yields nil.
func ParseID(raw string) *int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// ParseIDs parses submitted reference ids, dropping blank and non-integer
// values. The result is never nil.
func ParseIDs(raw []string) []int64 {
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		if id := ParseID(r); id != nil {
			ids = append(ids, *id)
		}
	}
	return ids
}
