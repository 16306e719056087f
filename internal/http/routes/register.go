package routes

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/lightsd/internal/http/mw"
	"github.com/jmylchreest/lightsd/internal/metrics"
)

// Register registers all API routes with the given Huma API instance.
func Register(api huma.API, h *Handlers) {
	// --- Health ---
	mw.Get(api, "/api/v1/health", h.HealthCheck,
		mw.Doc("Health", "healthCheck", "Health check"))

	mw.HiddenGet(api, "/healthz", h.HealthCheck)

	mw.Get(api, "/api/v1/version", h.VersionCheck,
		mw.Doc("Version", "getVersion", "Daemon version"))

	// --- Lights ---
	mw.Get(api, "/api/v1/lights", h.Light.ListLights,
		mw.Doc("Lights", "listLights", "List all lights"),
		mw.WithDescription("Returns every light in index order."))

	mw.Get(api, "/api/v1/lights/{id}", h.Light.GetLight,
		mw.LightOp("getLight", "Get a light"))

	mw.Put(api, "/api/v1/lights/{id}/brightness", h.Light.SetBrightness,
		mw.LightOp("setBrightness", "Set brightness"),
		mw.WithDescription("Sets an opaque gray of the given level. Intermediate user levels are also forwarded to the MCU."))

	mw.Put(api, "/api/v1/lights/{id}/color", h.Light.SetColor,
		mw.LightOp("setColor", "Set color"))

	mw.Put(api, "/api/v1/lights/{id}/flashing", h.Light.SetFlashing,
		mw.LightOp("setFlashing", "Set flashing"))

	mw.Post(api, "/api/v1/lights/{id}/pulse", h.Light.Pulse,
		mw.LightOp("pulseLight", "Pulse a light"),
		mw.WithDescription("Pulses the light once if it is off and switches it off again after the on period. Does nothing if the light is on."))

	mw.Post(api, "/api/v1/lights/{id}/off", h.Light.TurnOff,
		mw.LightOp("turnOffLight", "Turn a light off"))

	// --- MCU ---
	mw.Get(api, "/api/v1/mcu/frame", h.MCU.EncodeFrame,
		mw.Doc("MCU", "encodeFrame", "Encode a brightness frame"),
		mw.WithDescription("Returns the frame that would be sent to the MCU for a brightness. Nothing is sent."))

	// --- Logging ---
	mw.Get(api, "/api/v1/logging/level", h.Logging.GetLevel,
		mw.Doc("Logging", "getLogLevel", "Get global log level"))

	mw.Put(api, "/api/v1/logging/level", h.Logging.SetLevel,
		mw.Doc("Logging", "setLogLevel", "Set global log level"),
		mw.WithDescription("Changes the global log level at runtime. Valid values: debug, info, warn, error."))
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Version   string
	RateLimit mw.RateLimitConfig
	// EventStream is mounted at /api/v1/ws when set.
	EventStream http.Handler
}

// NewRouter builds the chi router with logging, rate limiting, the Huma
// API, the optional event stream and the Prometheus endpoint.
func NewRouter(logger *slog.Logger, h *Handlers, opts RouterOptions) http.Handler {
	router := chi.NewRouter()
	router.Use(mw.RequestLogging(logger))
	router.Use(mw.RateLimitMutations(opts.RateLimit))

	api := humachi.New(router, NewHumaConfig(opts.Version, ""))
	Register(api, h)

	if opts.EventStream != nil {
		router.Handle("/api/v1/ws", opts.EventStream)
	}
	router.Handle("/metrics", metrics.Handler())
	return router
}
