package handlers

import (
	"context"
)

// HealthInput is the input for health check endpoints.
type HealthInput struct{}

// HealthOutput mirrors the socket "health" action.
type HealthOutput struct {
	Body struct {
		Status        string `json:"status" doc:"Service health status"`
		MCUForwarding bool   `json:"mcu_forwarding" doc:"Whether brightness frames reach the MCU"`
		PendingPulses int    `json:"pending_pulses" doc:"Auto-off timers still waiting"`
	}
}

// PulseCounter reports scheduled auto-offs.
type PulseCounter interface {
	PendingPulses() int
}

// HealthHandler reports daemon status. A nil Pulses reports zero pending.
type HealthHandler struct {
	Pulses     PulseCounter
	Forwarding bool
}

func (h *HealthHandler) Check(_ context.Context, _ *HealthInput) (*HealthOutput, error) {
	out := &HealthOutput{}
	out.Body.Status = "ok"
	out.Body.MCUForwarding = h.Forwarding
	if h.Pulses != nil {
		out.Body.PendingPulses = h.Pulses.PendingPulses()
	}
	return out, nil
}

// VersionInput is the input for the version endpoint.
type VersionInput struct{}

// VersionOutput is the output for the version endpoint.
type VersionOutput struct {
	Body struct {
		Version string `json:"version" doc:"Daemon version"`
	}
}

// VersionCheck returns a handler reporting the given version.
func VersionCheck(version string) func(context.Context, *VersionInput) (*VersionOutput, error) {
	return func(_ context.Context, _ *VersionInput) (*VersionOutput, error) {
		out := &VersionOutput{}
		out.Body.Version = version
		return out, nil
	}
}
