package routes

import (
	"github.com/jmylchreest/lightsd/internal/http/handlers"
)

// StubHandlers returns handlers with no light service behind them. They are
// only for OpenAPI generation, where Huma reads types from the signatures
// and never calls them.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck:  (&handlers.HealthHandler{}).Check,
		VersionCheck: handlers.VersionCheck(""),
		Light:        &handlers.LightHandler{},
		MCU:          &handlers.MCUHandler{},
		Logging:      &handlers.LoggingHandler{},
	}
}
