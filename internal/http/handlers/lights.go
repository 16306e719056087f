package handlers

import (
	"context"

	"github.com/jmylchreest/lightsd/pkg/lights"
)

// --- List Lights ---

// ListLightsInput is the input for listing all lights.
type ListLightsInput struct{}

// ListLightsOutput is the output for listing all lights, in index order.
type ListLightsOutput struct {
	Body []LightResponse
}

// --- Get Light ---

// GetLightInput is the input for getting a single light.
type GetLightInput struct {
	ID string `path:"id" doc:"Light name or index"`
}

// LightOutput returns a light's state after an operation.
type LightOutput struct {
	Body LightResponse
}

// --- Set Brightness ---

// SetBrightnessInput is the input for setting a light's brightness.
type SetBrightnessInput struct {
	ID   string `path:"id" doc:"Light name or index"`
	Body struct {
		Brightness int    `json:"brightness" minimum:"0" maximum:"255" doc:"Brightness level (0-255)"`
		Mode       string `json:"mode,omitempty" enum:"user,sensor" doc:"Brightness source; only user levels are forwarded to the MCU"`
	}
}

// --- Set Color ---

// SetColorInput is the input for setting a steady color.
type SetColorInput struct {
	ID   string `path:"id" doc:"Light name or index"`
	Body struct {
		Color string `json:"color" minLength:"1" doc:"#RRGGBB, #AARRGGBB, 0x-prefixed hex or decimal ARGB"`
	}
}

// --- Set Flashing ---

// SetFlashingInput is the input for setting a flashing color.
type SetFlashingInput struct {
	ID   string `path:"id" doc:"Light name or index"`
	Body struct {
		Color string `json:"color" minLength:"1" doc:"#RRGGBB, #AARRGGBB, 0x-prefixed hex or decimal ARGB"`
		Mode  string `json:"mode" enum:"none,timed,hardware" doc:"Flash mode"`
		OnMS  uint32 `json:"on_ms,omitempty" doc:"On period in milliseconds"`
		OffMS uint32 `json:"off_ms,omitempty" doc:"Off period in milliseconds"`
	}
}

// --- Pulse ---

// PulseBody holds the optional pulse parameters.
type PulseBody struct {
	Color string  `json:"color,omitempty" doc:"Pulse color (default #00FFFFFF)"`
	OnMS  *uint32 `json:"on_ms,omitempty" doc:"On period in milliseconds (default 7)"`
}

// PulseInput is the input for pulsing a light.
type PulseInput struct {
	ID   string     `path:"id" doc:"Light name or index"`
	Body *PulseBody `required:"false"`
}

// PulseOutput reports whether the pulse took effect.
type PulseOutput struct {
	Body struct {
		Pulsed bool          `json:"pulsed" doc:"False when the light was already on"`
		Light  LightResponse `json:"light"`
	}
}

// --- Turn Off ---

// TurnOffInput is the input for switching a light off.
type TurnOffInput struct {
	ID string `path:"id" doc:"Light name or index"`
}

// LightHandler implements light-related HTTP handlers.
type LightHandler struct {
	Lights LightService
}

// ListLights returns every light in index order.
func (h *LightHandler) ListLights(_ context.Context, _ *ListLightsInput) (*ListLightsOutput, error) {
	return &ListLightsOutput{Body: LightsFromSnapshots(h.Lights.Snapshots())}, nil
}

// GetLight returns a single light.
func (h *LightHandler) GetLight(_ context.Context, input *GetLightInput) (*LightOutput, error) {
	id, err := lights.ParseID(input.ID)
	if err != nil {
		return nil, apiError(err)
	}
	return h.output(id)
}

// SetBrightness sets a light's brightness.
func (h *LightHandler) SetBrightness(_ context.Context, input *SetBrightnessInput) (*LightOutput, error) {
	l, err := h.light(input.ID)
	if err != nil {
		return nil, err
	}
	mode, err := lights.ParseBrightnessMode(input.Body.Mode)
	if err != nil {
		return nil, apiError(err)
	}
	l.SetBrightness(input.Body.Brightness, mode)
	return h.output(l.ID())
}

// SetColor sets a steady color.
func (h *LightHandler) SetColor(_ context.Context, input *SetColorInput) (*LightOutput, error) {
	l, err := h.light(input.ID)
	if err != nil {
		return nil, err
	}
	color, err := lights.ParseColor(input.Body.Color)
	if err != nil {
		return nil, apiError(err)
	}
	l.SetColor(color)
	return h.output(l.ID())
}

// SetFlashing sets a flashing color.
func (h *LightHandler) SetFlashing(_ context.Context, input *SetFlashingInput) (*LightOutput, error) {
	l, err := h.light(input.ID)
	if err != nil {
		return nil, err
	}
	color, err := lights.ParseColor(input.Body.Color)
	if err != nil {
		return nil, apiError(err)
	}
	mode, err := lights.ParseFlashMode(input.Body.Mode)
	if err != nil {
		return nil, apiError(err)
	}
	l.SetFlashing(color, mode, input.Body.OnMS, input.Body.OffMS)
	return h.output(l.ID())
}

// Pulse pulses a light that is currently off.
func (h *LightHandler) Pulse(_ context.Context, input *PulseInput) (*PulseOutput, error) {
	l, err := h.light(input.ID)
	if err != nil {
		return nil, err
	}

	color, onMS := lights.DefaultPulseColor, lights.DefaultPulseOnMS
	if input.Body != nil {
		if input.Body.Color != "" {
			if color, err = lights.ParseColor(input.Body.Color); err != nil {
				return nil, apiError(err)
			}
		}
		if input.Body.OnMS != nil {
			onMS = *input.Body.OnMS
		}
	}

	out := &PulseOutput{}
	out.Body.Pulsed = l.Pulse(color, onMS)
	light, err := h.output(l.ID())
	if err != nil {
		return nil, err
	}
	out.Body.Light = light.Body
	return out, nil
}

// TurnOff switches a light off.
func (h *LightHandler) TurnOff(_ context.Context, input *TurnOffInput) (*LightOutput, error) {
	l, err := h.light(input.ID)
	if err != nil {
		return nil, err
	}
	l.TurnOff()
	return h.output(l.ID())
}

func (h *LightHandler) light(raw string) (*lights.Light, error) {
	id, err := lights.ParseID(raw)
	if err != nil {
		return nil, apiError(err)
	}
	l, err := h.Lights.Light(id)
	if err != nil {
		return nil, apiError(err)
	}
	return l, nil
}

func (h *LightHandler) output(id lights.ID) (*LightOutput, error) {
	snap, err := h.Lights.Snapshot(id)
	if err != nil {
		return nil, apiError(err)
	}
	return &LightOutput{Body: LightFromSnapshot(snap)}, nil
}

// Ensure LightHandler implements the interface at compile time.
var _ LightHandlers = (*LightHandler)(nil)

// LightHandlers defines the interface for light operations.
type LightHandlers interface {
	ListLights(ctx context.Context, input *ListLightsInput) (*ListLightsOutput, error)
	GetLight(ctx context.Context, input *GetLightInput) (*LightOutput, error)
	SetBrightness(ctx context.Context, input *SetBrightnessInput) (*LightOutput, error)
	SetColor(ctx context.Context, input *SetColorInput) (*LightOutput, error)
	SetFlashing(ctx context.Context, input *SetFlashingInput) (*LightOutput, error)
	Pulse(ctx context.Context, input *PulseInput) (*PulseOutput, error)
	TurnOff(ctx context.Context, input *TurnOffInput) (*LightOutput, error)
}
