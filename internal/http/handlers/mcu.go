package handlers

import (
	"context"

	"github.com/jmylchreest/lightsd/internal/mcu"
)

// --- Encode Frame ---

// EncodeFrameInput is the input for previewing an MCU frame.
type EncodeFrameInput struct {
	Brightness int `query:"brightness" minimum:"0" maximum:"255" required:"true" doc:"Brightness level (0-255)"`
}

// FrameOutput describes an encoded brightness frame.
type FrameOutput struct {
	Body FrameResponse
}

// FrameResponse is the API representation of an MCU frame.
type FrameResponse struct {
	Brightness int    `json:"brightness" doc:"Requested brightness"`
	Level      int    `json:"level" doc:"MCU dimming level (brightness / 8)"`
	Checksum   int    `json:"checksum" doc:"Frame checksum byte"`
	Frame      string `json:"frame" doc:"Frame bytes as uppercase hex"`
}

// FrameFromBrightness encodes brightness and describes the result.
func FrameFromBrightness(brightness int) FrameResponse {
	f := mcu.Encode(brightness)
	return FrameResponse{
		Brightness: brightness,
		Level:      int(f.Level()),
		Checksum:   int(f.Checksum()),
		Frame:      f.String(),
	}
}

// MCUHandler serves MCU protocol diagnostics. Nothing is sent to the MCU.
type MCUHandler struct{}

// EncodeFrame returns the frame that would be sent for a brightness.
func (h *MCUHandler) EncodeFrame(_ context.Context, input *EncodeFrameInput) (*FrameOutput, error) {
	return &FrameOutput{Body: FrameFromBrightness(input.Brightness)}, nil
}

// Ensure MCUHandler implements the interface at compile time.
var _ MCUHandlers = (*MCUHandler)(nil)

// MCUHandlers defines the interface for MCU diagnostics.
type MCUHandlers interface {
	EncodeFrame(ctx context.Context, input *EncodeFrameInput) (*FrameOutput, error)
}
