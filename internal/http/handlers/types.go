// Package handlers provides typed Huma request/response structs and handler
// implementations for the lightsd HTTP API.
package handlers

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/lightsd/internal/errors"
	"github.com/jmylchreest/lightsd/pkg/lights"
)

// --- Light types ---

// LightResponse is the API representation of a light's state.
type LightResponse struct {
	ID       string `json:"id" doc:"Light name"`
	Index    int    `json:"index" doc:"Light index (0-10)"`
	Color    uint32 `json:"color" doc:"ARGB color as an integer"`
	ColorHex string `json:"color_hex" doc:"ARGB color as #AARRGGBB"`
	Mode     string `json:"mode" doc:"Flash mode (none, timed, hardware)"`
	OnMS     uint32 `json:"on_ms" doc:"Flash on period in milliseconds"`
	OffMS    uint32 `json:"off_ms" doc:"Flash off period in milliseconds"`
	On       bool   `json:"on" doc:"Whether the light is lit"`
}

// LightFromSnapshot converts a lights.Snapshot to a LightResponse.
func LightFromSnapshot(s lights.Snapshot) LightResponse {
	return LightResponse{
		ID:       s.ID.String(),
		Index:    s.Index,
		Color:    s.State.Color,
		ColorHex: s.Color,
		Mode:     s.State.Mode.String(),
		OnMS:     s.State.OnMS,
		OffMS:    s.State.OffMS,
		On:       !s.State.Off(),
	}
}

// LightsFromSnapshots converts every snapshot, keeping index order.
func LightsFromSnapshots(snaps []lights.Snapshot) []LightResponse {
	result := make([]LightResponse, 0, len(snaps))
	for _, s := range snaps {
		result = append(result, LightFromSnapshot(s))
	}
	return result
}

// --- Common response types ---

// StatusResponse is a generic status response.
type StatusResponse struct {
	Status string `json:"status" doc:"Operation status"`
}

// LightService is the part of lights.Service the handlers use.
type LightService interface {
	Light(id lights.ID) (*lights.Light, error)
	Snapshot(id lights.ID) (lights.Snapshot, error)
	Snapshots() []lights.Snapshot
}

// apiError maps internal error kinds onto HTTP errors.
func apiError(err error) error {
	switch {
	case errors.IsNotFound(err):
		return huma.Error404NotFound(err.Error())
	case errors.IsInvalidInput(err):
		return huma.Error400BadRequest(err.Error())
	case errors.IsDeviceUnavailable(err):
		return huma.Error503ServiceUnavailable(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
