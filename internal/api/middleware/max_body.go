package middleware

import (
	"net/http"

	"github.com/cloo-solutions/onetool/internal/api"
)

// MaxBodyBytes caps request bodies at limit. Declared oversized bodies are
// rejected up front; chunked ones fail when the handler reads past the limit.
// Methods that carry no body pass through untouched.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				api.ErrorWithCode(w, http.StatusRequestEntityTooLarge, api.CodeBodyTooLarge, "request body too large")
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
