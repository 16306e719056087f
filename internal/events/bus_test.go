package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jmylchreest/lightsd/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent(LightStateChanged, map[string]string{"light": "backlight"})

	assert.Equal(t, LightStateChanged, e.Type)
	assert.False(t, e.Timestamp.IsZero())

	var data map[string]string
	require.NoError(t, json.Unmarshal(e.Data, &data))
	assert.Equal(t, "backlight", data["light"])
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	e := NewEvent(FrameForwarded, make(chan int))
	assert.JSONEq(t, "null", string(e.Data))
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()
	var received []Event
	var mu sync.Mutex

	unsub := bus.Subscribe(func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})

	bus.Publish(NewEvent(LightStateChanged, nil))
	bus.Publish(NewEvent(LightPulsed, nil))

	mu.Lock()
	require.Len(t, received, 2)
	assert.Equal(t, LightStateChanged, received[0].Type)
	assert.Equal(t, LightPulsed, received[1].Type)
	mu.Unlock()

	unsub()
	unsub() // second call is a no-op
	bus.Publish(NewEvent(FrameForwarded, nil))

	mu.Lock()
	assert.Len(t, received, 2)
	mu.Unlock()
	assert.Equal(t, 0, bus.Len())
}

func TestBusTypeFilter(t *testing.T) {
	bus := NewBus()
	var frames, all atomic.Int32

	bus.Subscribe(func(Event) { frames.Add(1) }, FrameForwarded)
	bus.Subscribe(func(Event) { all.Add(1) })

	bus.Publish(NewEvent(LightStateChanged, nil))
	bus.Publish(NewEvent(FrameForwarded, nil))
	bus.Publish(NewEvent(LightPulsed, nil))

	assert.Equal(t, int32(1), frames.Load())
	assert.Equal(t, int32(3), all.Load())
}

func TestNilBus(t *testing.T) {
	var bus *Bus
	unsub := bus.Subscribe(func(Event) { t.Fatal("nil bus delivered an event") })
	bus.Publish(NewEvent(LightStateChanged, nil))
	unsub()
	assert.Equal(t, 0, bus.Len())
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := NewBus()
	var count atomic.Int64
	bus.Subscribe(func(Event) { count.Add(1) })

	const goroutines = 32
	const perGoroutine = 100

	var wg sync.WaitGroup
	for range goroutines {
		wg.Go(func() {
			for range perGoroutine {
				bus.Publish(NewEvent(LightStateChanged, nil))
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines*perGoroutine), count.Load())
}

func TestBusConcurrentSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus()
	var wg sync.WaitGroup
	for range 32 {
		wg.Go(func() {
			unsub := bus.Subscribe(func(Event) {})
			bus.Publish(NewEvent(LightPulsed, nil))
			unsub()
		})
	}
	wg.Wait()
	assert.Equal(t, 0, bus.Len())
}

func TestParseTypes(t *testing.T) {
	got, err := ParseTypes("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseTypes(" light.pulsed , mcu.frame_forwarded,")
	require.NoError(t, err)
	assert.Equal(t, []EventType{LightPulsed, FrameForwarded}, got)

	_, err = ParseTypes("light.pulsed,light.exploded")
	assert.True(t, errors.IsInvalidInput(err))
}
