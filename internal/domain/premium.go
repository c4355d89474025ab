package domain

// PremiumResult is the decomposed premium for one cover tier. Every field is
// rounded to two decimal places independently, after summation.
type PremiumResult struct {
	BasePremium  float64 `json:"base_premium"`
	CruiseAddOn  float64 `json:"cruise_add_on"`
	SnowAddOn    float64 `json:"snow_add_on"`
	FinalPremium float64 `json:"final_premium"`
}

// Premiums maps cover id to its premium. An empty map means the quote could
// not be priced; it is not an error.
type Premiums map[int64]PremiumResult

// CoverPremium pairs a cover with its premium for display.
type CoverPremium struct {
	Cover   Cover         `json:"cover"`
	Premium PremiumResult `json:"premium"`
}

// Pricing is a quote priced against current reference data. Premiums is
// empty when the quote cannot be priced.
type Pricing struct {
	Premiums               []CoverPremium `json:"premiums"`
	HighestZoneDestination *Destination   `json:"highest_zone_destination"`
	TripDurationDays       int            `json:"trip_duration_days"`
}

// QuoteView is a saved quote with its pricing recomputed on every read.
type QuoteView struct {
	Quote Quote `json:"quote"`
	Pricing
}

// Priced returns the premium rows for covers that have a premium, in cover order.
func Priced(covers []Cover, premiums Premiums) []CoverPremium {
	out := make([]CoverPremium, 0, len(premiums))
	for _, c := range covers {
		if p, ok := premiums[c.ID]; ok {
			out = append(out, CoverPremium{Cover: c, Premium: p})
		}
	}
	return out
}
