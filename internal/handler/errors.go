package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/travel-quote/backend/internal/domain"
)

// errBadRequest marks a request rejected before reaching the service layer
// (malformed JSON, bad path or query parameter).
var errBadRequest = errors.New("bad request")

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and error envelope.
// notFound is the message used when err is domain.ErrNotFound, because the
// handler is the layer that knows what was being looked up.
// Unexpected errors are logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrorDetail{
			Code:    "request_too_large",
			Message: "request body too large",
		}})
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{
			Code:    "bad_request",
			Message: strings.TrimPrefix(err.Error(), errBadRequest.Error()+": "),
		}})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(notFound))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{
			Code:    "internal_error",
			Message: "internal server error",
		}})
	}
}

// notFoundBody returns an ErrorResponse for a missing resource.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// validationBody returns an ErrorResponse listing every message carried by a
// domain validation failure, untranslated and in order.
func validationBody(err error) ErrorResponse {
	messages := domain.ValidationMessages(err)
	return ErrorResponse{Error: ErrorDetail{
		Code:     "validation_error",
		Message:  strings.Join(messages, " "),
		Messages: messages,
	}}
}
