package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/travel-quote/backend/internal/domain"
)

// Response bodies. Field names and shapes follow spec/openapi.yaml.

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorDetail describes why a request failed. Messages is set for validation
// failures and lists every violated rule in order.
type ErrorDetail struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Messages []string `json:"messages,omitempty"`
}

// ErrorResponse is the envelope of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Quote is a saved quote as returned by the API.
type Quote struct {
	Id             openapi_types.UUID  `json:"id"`
	Age            int                 `json:"age"`
	Travellers     []domain.Traveller  `json:"travellers"`
	StartDate      openapi_types.Date  `json:"start_date"`
	EndDate        openapi_types.Date  `json:"end_date"`
	DestinationIds []int64             `json:"destination_ids"`
	TripTypeId     int64               `json:"trip_type_id"`
	ExcessId       int64               `json:"excess_id"`
	CoverId        *int64              `json:"cover_id"`
	Cruise         bool                `json:"cruise"`
	Snow           bool                `json:"snow"`
	SnowStartDate  *openapi_types.Date `json:"snow_start_date"`
	SnowEndDate    *openapi_types.Date `json:"snow_end_date"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Pricing is a quote's premiums per cover plus the figures they were derived from.
type Pricing struct {
	Premiums               []domain.CoverPremium `json:"premiums"`
	HighestZoneDestination *domain.Destination   `json:"highest_zone_destination"`
	TripDurationDays       int                   `json:"trip_duration_days"`
}

// QuoteView is the body of every endpoint returning a single saved quote.
type QuoteView struct {
	Quote Quote `json:"quote"`
	Pricing
}

// QuoteSummary is one row of GET /quotes.
type QuoteSummary struct {
	Id             openapi_types.UUID `json:"id"`
	Travellers     int                `json:"travellers"`
	StartDate      openapi_types.Date `json:"start_date"`
	EndDate        openapi_types.Date `json:"end_date"`
	TripTypeId     int64              `json:"trip_type_id"`
	DestinationIds []int64            `json:"destination_ids"`
	CreatedAt      time.Time          `json:"created_at"`
}

// QuoteList is the body of GET /quotes.
type QuoteList struct {
	Data       []QuoteSummary `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// --- mapping helpers --------------------------------------------------------

func quoteToResponse(q domain.Quote) Quote {
	travellers := q.Travellers
	if travellers == nil {
		travellers = []domain.Traveller{}
	}
	return Quote{
		Id:             q.ID,
		Age:            q.Age,
		Travellers:     travellers,
		StartDate:      openapi_types.Date{Time: q.StartDate},
		EndDate:        openapi_types.Date{Time: q.EndDate},
		DestinationIds: nonNilIDs(q.DestinationIDs),
		TripTypeId:     q.TripTypeID,
		ExcessId:       q.ExcessID,
		CoverId:        q.CoverID,
		Cruise:         q.Cruise,
		Snow:           q.Snow,
		SnowStartDate:  datePtr(q.SnowStartDate),
		SnowEndDate:    datePtr(q.SnowEndDate),
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

func pricingToResponse(p domain.Pricing) Pricing {
	premiums := p.Premiums
	if premiums == nil {
		premiums = []domain.CoverPremium{}
	}
	return Pricing{
		Premiums:               premiums,
		HighestZoneDestination: p.HighestZoneDestination,
		TripDurationDays:       p.TripDurationDays,
	}
}

func viewToResponse(v domain.QuoteView) QuoteView {
	return QuoteView{Quote: quoteToResponse(v.Quote), Pricing: pricingToResponse(v.Pricing)}
}

func pageToResponse(p domain.QuotePage) QuoteList {
	data := make([]QuoteSummary, len(p.Quotes))
	for i, s := range p.Quotes {
		data[i] = QuoteSummary{
			Id:             s.ID,
			Travellers:     s.Travellers,
			StartDate:      openapi_types.Date{Time: s.StartDate},
			EndDate:        openapi_types.Date{Time: s.EndDate},
			TripTypeId:     s.TripTypeID,
			DestinationIds: nonNilIDs(s.DestinationIDs),
			CreatedAt:      s.CreatedAt,
		}
	}
	return QuoteList{
		Data: data,
		Pagination: Pagination{
			Page:  p.Params.Page,
			Limit: p.Params.Limit,
			Total: int(p.Total),
		},
	}
}

func datePtr(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
