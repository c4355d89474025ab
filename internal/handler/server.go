// Package handler implements the HTTP handlers for the travel quote API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, quote.go, reference.go) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/travel-quote/backend/internal/domain"
)

// QuoteServicer defines the quote operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type QuoteServicer interface {
	Create(ctx context.Context, sub domain.QuoteSubmission) (domain.QuoteView, error)
	Preview(ctx context.Context, sub domain.QuoteSubmission) (domain.Pricing, error)
	Get(ctx context.Context, id uuid.UUID) (domain.QuoteView, error)
	Update(ctx context.Context, id uuid.UUID, upd domain.QuoteUpdate) (domain.QuoteView, error)
	List(ctx context.Context, p domain.PaginationParams) (domain.QuotePage, error)
}

// ReferenceServicer serves the reference tables a client needs to build a quote.
type ReferenceServicer interface {
	FormData(ctx context.Context) (domain.ReferenceData, error)
}

// Server holds the dependencies of every API endpoint.
// Wire it in main.go with Routes.
type Server struct {
	quotes    QuoteServicer
	reference ReferenceServicer
	log       *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil log discards handler logging.
func NewServer(quotes QuoteServicer, reference ReferenceServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{quotes: quotes, reference: reference, log: log}
}

// Routes registers every API endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/reference", s.GetReference)

	r.Route("/quotes", func(r chi.Router) {
		r.Get("/", s.ListQuotes)
		r.Post("/", s.CreateQuote)
		r.Post("/preview", s.PreviewQuote)
		r.Get("/{id}", s.GetQuote)
		r.Patch("/{id}", s.UpdateQuote)
	})
}
