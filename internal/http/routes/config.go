// Package routes holds the lightsd HTTP route table, shared by the daemon and
// the OpenAPI generator.
package routes

import (
	"github.com/danielgtaylor/huma/v2"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(version, baseURL string) huma.Config {
	cfg := huma.DefaultConfig("lightsd API", version)
	cfg.Info.Description = "REST API for the lightsd light state daemon."

	// Disable $schema field in responses
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Health", Description: "Service health"},
		{Name: "Version", Description: "Daemon version"},
		{Name: "Lights", Description: "Light state and control"},
		{Name: "MCU", Description: "Brightness frame diagnostics"},
		{Name: "Logging", Description: "Runtime log level"},
	}

	return cfg
}
