package handler

import "net/http"

// GetReference handles GET /reference.
// It returns the trip types, excess tiers, destinations and covers a client
// offers when building a quote.
func (s *Server) GetReference(w http.ResponseWriter, r *http.Request) {
	data, err := s.reference.FormData(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, data)
}
