package middleware

import (
	"net/http"

	"sdr-backend/internal/transport"
)

// APIKeyAuth is the access guard in front of the lead relay. The caller
// must present the shared secret in X-API-Key; anything else is a 401
// with a bare "Unauthorized" message. An empty configured key rejects
// every request rather than failing open.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get("X-API-Key")
			if apiKey == "" || presented == "" || presented != apiKey {
				transport.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
