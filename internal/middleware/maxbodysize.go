package middleware

import (
	"fmt"
	"net/http"
	"strconv"
)

// tooLargeBody matches the error envelope the API handlers write.
const tooLargeBody = `{"error":{"code":"request_too_large","message":"request body exceeds %d bytes"}}`

// NewMaxBodySizeHandler returns a middleware that limits incoming request body
// sizes to limit bytes. Requests whose Content-Length exceeds the limit are
// rejected with 413 Request Entity Too Large before reaching the next handler.
// Bodies of unknown length are wrapped in http.MaxBytesReader, so the read
// inside the handler fails with *http.MaxBytesError once the limit is passed.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	body := []byte(fmt.Sprintf(tooLargeBody, limit))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Content-Length", strconv.Itoa(len(body)))
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write(body)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
