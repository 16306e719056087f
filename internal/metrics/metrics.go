// Package metrics provides Prometheus metrics for light transitions and the MCU link.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Frame outcomes for the MCU link
const (
	FrameQueued  = "queued"
	FrameSent    = "sent"
	FrameDropped = "dropped"
	FrameFailed  = "failed"
)

var (
	hardwareUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightsd",
		Subsystem: "light",
		Name:      "hardware_updates_total",
		Help:      "State transitions pushed to the hardware backend",
	}, []string{"light"})

	suppressedUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightsd",
		Subsystem: "light",
		Name:      "suppressed_updates_total",
		Help:      "Requests that matched the current state and were not sent to hardware",
	}, []string{"light"})

	hardwareErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightsd",
		Subsystem: "light",
		Name:      "hardware_errors_total",
		Help:      "Hardware backend errors absorbed by the light controller",
	}, []string{"light"})

	pulses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightsd",
		Subsystem: "light",
		Name:      "pulses_total",
		Help:      "Pulses started (light was off when requested)",
	}, []string{"light"})

	pendingPulseTimers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightsd",
		Subsystem: "scheduler",
		Name:      "pending_timers",
		Help:      "Auto-off timers waiting to fire",
	})

	mcuFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightsd",
		Subsystem: "mcu",
		Name:      "frames_total",
		Help:      "Brightness frames by outcome (queued, sent, dropped, failed)",
	}, []string{"result"})

	httpRateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightsd",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-client limit",
	}, []string{"method"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lightsd",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP API request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// RecordHardwareUpdate counts a transition pushed to hardware.
func RecordHardwareUpdate(light string) {
	hardwareUpdates.WithLabelValues(light).Inc()
}

// RecordSuppressedUpdate counts a request deduplicated against the current state.
func RecordSuppressedUpdate(light string) {
	suppressedUpdates.WithLabelValues(light).Inc()
}

// RecordHardwareError counts an absorbed hardware backend error.
func RecordHardwareError(light string) {
	hardwareErrors.WithLabelValues(light).Inc()
}

// RecordPulse counts a pulse that took effect.
func RecordPulse(light string) {
	pulses.WithLabelValues(light).Inc()
}

// SetPendingPulseTimers sets the number of scheduled auto-off timers.
func SetPendingPulseTimers(n int) {
	pendingPulseTimers.Set(float64(n))
}

// RecordFrame counts an MCU frame outcome.
func RecordFrame(result string) {
	mcuFrames.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records the latency of one API request.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func RecordRateLimited(method string) {
	httpRateLimited.WithLabelValues(method).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
