package mw

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMutations(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := RateLimitMutations(RateLimitConfig{RequestsPerMinute: 1})(ok)

	serve := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/v1/lights/wifi/off", nil)
		req.RemoteAddr = "10.0.0.7:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodPost).Code)
	limited := serve(http.MethodPut)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Contains(t, limited.Body.String(), `"status":429`)
	assert.Equal(t, http.StatusOK, serve(http.MethodGet).Code)
}

func TestRateLimitMutations_Disabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := RateLimitMutations(RateLimitConfig{})(ok)

	for range 10 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/lights/wifi/off", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRequestLevel(t *testing.T) {
	put := httptest.NewRequest(http.MethodPut, "/api/v1/lights/wifi/color", nil)
	get := httptest.NewRequest(http.MethodGet, "/api/v1/lights", nil)

	assert.Equal(t, slog.LevelInfo, requestLevel(put, http.StatusOK))
	assert.Equal(t, slog.LevelDebug, requestLevel(put, http.StatusUnprocessableEntity))
	assert.Equal(t, slog.LevelDebug, requestLevel(get, http.StatusOK))
	assert.Equal(t, slog.LevelWarn, requestLevel(get, http.StatusInternalServerError))
}
