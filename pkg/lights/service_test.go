package lights

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jmylchreest/lightsd/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Lights(t *testing.T) {
	svc, _, _ := newTestService(t)

	all := svc.Lights()
	require.Len(t, all, Count)
	for i, l := range all {
		assert.Equal(t, ID(i), l.ID())
	}

	_, err := svc.Light(ID(Count))
	assert.True(t, errors.IsNotFound(err))
	_, err = svc.Light(-1)
	assert.True(t, errors.IsNotFound(err))
}

func TestService_Snapshots(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustLight(t, svc, Caps).SetColor(0xFF00FF00)

	snaps := svc.Snapshots()
	require.Len(t, snaps, Count)
	assert.Equal(t, Caps, snaps[Caps].ID)
	assert.Equal(t, "#FF00FF00", snaps[Caps].Color)
	assert.True(t, snaps[Backlight].State.Off())

	snap, err := svc.Snapshot(Caps)
	require.NoError(t, err)
	assert.Equal(t, snaps[Caps], snap)

	_, err = svc.Snapshot(ID(99))
	assert.True(t, errors.IsNotFound(err))
}

func TestService_NilHardware(t *testing.T) {
	svc := NewService(Options{Logger: testLogger()})
	defer svc.Close()

	l := mustLight(t, svc, Backlight)
	l.SetBrightness(10, BrightnessUser)
	assert.Equal(t, GrayColor(10), l.State().Color)
}

func TestService_CloseDiscardsPulses(t *testing.T) {
	hw := &recordingHardware{}
	svc := NewService(Options{Hardware: hw, Logger: testLogger()})

	l := mustLight(t, svc, Attention)
	require.True(t, l.Pulse(0xFFFFFFFF, 60_000))
	svc.Close()

	assert.Equal(t, 0, svc.PendingPulses())
	assert.Equal(t, uint32(0xFFFFFFFF), l.State().Color)
}

func TestService_HardwareCallSequence(t *testing.T) {
	svc, hw, link := newTestService(t)

	mustLight(t, svc, Backlight).SetBrightness(128, BrightnessUser)
	mustLight(t, svc, Backlight).SetBrightness(128, BrightnessUser)
	mustLight(t, svc, Keyboard).SetBrightness(255, BrightnessSensor)
	mustLight(t, svc, Wifi).SetFlashing(0xFF0000FF, FlashTimed, 500, 250)
	mustLight(t, svc, Wifi).TurnOff()
	mustLight(t, svc, Wifi).TurnOff()

	want := []hwCall{
		{ID: Backlight, State: State{Color: 0xFF808080}, BM: BrightnessUser},
		{ID: Keyboard, State: State{Color: 0xFFFFFFFF}, BM: BrightnessSensor},
		{ID: Wifi, State: State{Color: 0xFF0000FF, Mode: FlashTimed, OnMS: 500, OffMS: 250}, BM: BrightnessUser},
		{ID: Wifi, State: State{}, BM: BrightnessUser},
	}
	if diff := cmp.Diff(want, hw.Calls()); diff != "" {
		t.Errorf("hardware calls mismatch (-want +got):\n%s", diff)
	}

	// forwarding is not deduplicated, only the hardware call is
	frame := []byte{0xAA, 0x04, 0x49, 0xA1, 0x10, 0xFE, 0x55}
	wantFrames := [][]byte{frame, frame}
	if diff := cmp.Diff(wantFrames, link.Frames()); diff != "" {
		t.Errorf("forwarded frames mismatch (-want +got):\n%s", diff)
	}
}
