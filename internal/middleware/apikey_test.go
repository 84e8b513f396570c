package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"sdr-backend/internal/middleware"

	"github.com/stretchr/testify/assert"
)

func guardedHandler(key string) (http.Handler, *bool) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	return middleware.APIKeyAuth(key)(next), &reached
}

func TestAPIKeyAuthAllowsMatchingKey(t *testing.T) {
	h, reached := guardedHandler("secret")

	req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestAPIKeyAuthRejectsMissingOrWrongKey(t *testing.T) {
	for _, presented := range []string{"", "wrong", "Secret", "secret "} {
		h, reached := guardedHandler("secret")

		req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
		if presented != "" {
			req.Header.Set("X-API-Key", presented)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "key %q", presented)
		assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
		assert.False(t, *reached, "key %q", presented)
	}
}

func TestAPIKeyAuthFailsClosedWhenUnconfigured(t *testing.T) {
	h, reached := guardedHandler("")

	req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
	req.Header.Set("X-API-Key", "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}
