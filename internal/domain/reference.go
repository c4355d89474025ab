package domain

// Reference tables are owned outside this service and are read-only here.
// Every lookup is re-read per request so rate changes apply immediately.

// BasePremiumType is the premium_type of the single row every premium starts from.
const BasePremiumType = "base"

// TripType is a kind of trip (single, annual multi-trip, ...) with its rate multiplier.
type TripType struct {
	ID         int64   `json:"id"`
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
}

// Excess is a deductible tier; a higher excess usually carries a lower multiplier.
type Excess struct {
	ID         int64   `json:"id"`
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
}

// Destination is a country or region a traveller can select.
// Multiplier and SkiPerDayAmount are nullable in the reference data; a nil
// value makes the dependent premium component contribute zero.
type Destination struct {
	ID                int64    `json:"id"`
	Label             string   `json:"label"`
	Code              string   `json:"code"`
	Zone              int      `json:"zone"`
	Multiplier        *float64 `json:"multiplier"`
	CruiseAddOnAmount float64  `json:"cruise_add_on_amount"`
	SkiPerDayAmount   *float64 `json:"ski_per_day_amount"`
}

// Cover is a cover tier. One premium is priced per cover.
type Cover struct {
	ID         int64   `json:"id"`
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
}

// BasePremium is the starting rate shared by every traveller and cover.
type BasePremium struct {
	ID         int64
	Label      string
	Type       string
	Multiplier float64
}

// Bracket is an inclusive integer range with a multiplier. Age brackets are
// keyed by traveller age in years, duration brackets by trip length in days.
type Bracket struct {
	ID         int64   `json:"id"`
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	Multiplier float64 `json:"multiplier"`
}

// Contains reports whether v falls within [Min, Max].
func (b Bracket) Contains(v int) bool {
	return b.Min <= v && v <= b.Max
}

// ReferenceData is the form data a client needs to build a quote submission.
type ReferenceData struct {
	TripTypes    []TripType    `json:"trip_types"`
	Excesses     []Excess      `json:"excesses"`
	Destinations []Destination `json:"destinations"`
	Covers       []Cover       `json:"covers"`
}
