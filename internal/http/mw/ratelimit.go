package mw

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/jmylchreest/lightsd/internal/metrics"
)

// RateLimitConfig bounds how often one client may change light state.
type RateLimitConfig struct {
	// RequestsPerMinute per remote IP. Zero or less disables the limit.
	RequestsPerMinute int
}

// mutating reports whether r can change a light or the daemon.
func mutating(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RecordRateLimited(r.Method)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]any{
		"title":  http.StatusText(http.StatusTooManyRequests),
		"status": http.StatusTooManyRequests,
		"detail": "too many light changes from " + r.RemoteAddr + ", slow down",
	})
}

// RateLimitMutations limits state-changing requests per client IP. Reads
// and the event stream are not counted.
func RateLimitMutations(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.RequestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := httprate.Limit(cfg.RequestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(writeRateLimited),
	)
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mutating(r) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
