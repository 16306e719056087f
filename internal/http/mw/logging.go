package mw

import (
	"bufio"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/lightsd/internal/metrics"
)

// loggingResponseWriter wraps http.ResponseWriter to capture the status code.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newLoggingResponseWriter(w http.ResponseWriter) *loggingResponseWriter {
	return &loggingResponseWriter{w, http.StatusOK}
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the event stream upgrade through the logger.
func (lrw *loggingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	lrw.statusCode = http.StatusSwitchingProtocols
	return http.NewResponseController(lrw.ResponseWriter).Hijack()
}

func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lrw.ResponseWriter
}

// RequestLogging logs one line per request and records its latency by route
// pattern. Light changes are logged at info, server errors at warn and
// everything else at debug.
func RequestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := newLoggingResponseWriter(w)
			next.ServeHTTP(lrw, r)
			elapsed := time.Since(start)

			route := routePattern(r)
			metrics.ObserveHTTPRequest(r.Method, route, lrw.statusCode, elapsed)

			attrs := []any{
				"method", r.Method,
				"route", route,
				"status", lrw.statusCode,
				"duration", elapsed,
				"remote_addr", r.RemoteAddr,
			}
			if id := chi.URLParam(r, "id"); id != "" {
				attrs = append(attrs, "light", id)
			}
			logger.Log(r.Context(), requestLevel(r, lrw.statusCode), "HTTP request", attrs...)
		})
	}
}

func requestLevel(r *http.Request, status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelWarn
	case mutating(r) && status < http.StatusBadRequest:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// routePattern keeps metric labels bounded: /api/v1/lights/{id}, not every id.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
