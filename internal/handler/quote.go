package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/travel-quote/backend/internal/domain"
)

const quoteNotFound = "quote not found"

// CreateQuote handles POST /quotes.
// A rejected submission answers 422 with every violated rule.
func (s *Server) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var body quoteRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	view, err := s.quotes.Create(r.Context(), body.submission())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, viewToResponse(view))
}

// PreviewQuote handles POST /quotes/preview.
// It prices a submission without saving it.
func (s *Server) PreviewQuote(w http.ResponseWriter, r *http.Request) {
	var body quoteRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	pricing, err := s.quotes.Preview(r.Context(), body.submission())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, pricingToResponse(pricing))
}

// ListQuotes handles GET /quotes.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListQuotes(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid page: %v", errBadRequest, err), "")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid limit: %v", errBadRequest, err), "")
		return
	}

	result, err := s.quotes.List(r.Context(), domain.NewPaginationParams(page, limit))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(result))
}

// GetQuote handles GET /quotes/{id}.
// Premiums are recomputed from the current reference data on every read.
func (s *Server) GetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := quoteID(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	view, err := s.quotes.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, quoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(view))
}

// UpdateQuote handles PATCH /quotes/{id}.
// Only the add-on flags, snow dates and cover can change.
func (s *Server) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	id, err := quoteID(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	var body quotePatchRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	view, err := s.quotes.Update(r.Context(), id, body.update())
	if err != nil {
		s.writeError(w, r, err, quoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, viewToResponse(view))
}

// quoteID binds the {id} path parameter.
func quoteID(r *http.Request) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, fmt.Errorf("%w: invalid format for parameter id: %v", errBadRequest, err)
	}
	return id, nil
}
