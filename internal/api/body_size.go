package api

import "net/http"

// withMaxBody caps the request body at limit bytes. Reads past the limit fail,
// which decodeJSON reports as an invalid body.
func withMaxBody(limit int64, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next(w, r)
	}
}
