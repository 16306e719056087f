package lights

import (
	"encoding/json"
	"testing"

	"github.com/jmylchreest/lightsd/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{"backlight", Backlight},
		{"Keyboard", Keyboard},
		{" music ", Music},
		{"0", Backlight},
		{"10", Music},
		{"4", Notifications},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "11", "-1", "lamp"} {
		_, err := ParseID(bad)
		assert.True(t, errors.IsNotFound(err), "input %q", bad)
	}
}

func TestIDNames(t *testing.T) {
	assert.Equal(t, 11, Count)
	assert.Equal(t, "backlight", Backlight.String())
	assert.Equal(t, "func", Func.String())
	assert.Equal(t, "light(12)", ID(12).String())
	assert.Len(t, AllIDs(), Count)
}

func TestParseModes(t *testing.T) {
	m, err := ParseFlashMode("Hardware")
	require.NoError(t, err)
	assert.Equal(t, FlashHardware, m)

	m, err = ParseFlashMode("1")
	require.NoError(t, err)
	assert.Equal(t, FlashTimed, m)

	_, err = ParseFlashMode("strobe")
	assert.True(t, errors.IsInvalidInput(err))

	bm, err := ParseBrightnessMode("")
	require.NoError(t, err)
	assert.Equal(t, BrightnessUser, bm)

	bm, err = ParseBrightnessMode("sensor")
	require.NoError(t, err)
	assert.Equal(t, BrightnessSensor, bm)

	_, err = ParseBrightnessMode("ambient")
	assert.True(t, errors.IsInvalidInput(err))
}

func TestSnapshotJSON(t *testing.T) {
	snap := Snapshot{
		ID:    Notifications,
		Index: 4,
		State: State{Color: 0xFF00FF00, Mode: FlashTimed, OnMS: 100, OffMS: 200},
		Color: ColorHex(0xFF00FF00),
	}

	b, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"notifications","index":4,"state":{"color":4278255360,"mode":"timed","on_ms":100,"off_ms":200},"color_hex":"#FF00FF00"}`, string(b))

	var back Snapshot
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, snap, back)
}

func TestGrayColor(t *testing.T) {
	assert.Equal(t, uint32(0xFF000000), GrayColor(0))
	assert.Equal(t, uint32(0xFF808080), GrayColor(128))
	assert.Equal(t, uint32(0xFFFFFFFF), GrayColor(255))
	assert.Equal(t, uint32(0xFFFFFFFF), GrayColor(1000))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"#00FF00", 0xFF00FF00},
		{"#8000ff00", 0x8000FF00},
		{"0x00FFFFFF", 0x00FFFFFF},
		{"4278190080", 0xFF000000},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"#FFF", "red", "0xZZ", "-1", "#GG0000"} {
		_, err := ParseColor(bad)
		assert.True(t, errors.IsInvalidInput(err), "input %q", bad)
	}
}
