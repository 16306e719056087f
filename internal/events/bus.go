// Package events provides the in-process fan-out bus that carries light state
// changes to watchers (socket watch streams, metrics).
package events

import (
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/lightsd/internal/errors"
)

// EventType identifies the kind of event.
type EventType string

const (
	// LightStateChanged is published after a transition reached the hardware
	LightStateChanged EventType = "light.state_changed"
	// LightPulsed is published when a pulse started and its auto-off was scheduled
	LightPulsed EventType = "light.pulsed"
	// FrameForwarded is published when a brightness frame was handed to the MCU link
	FrameForwarded EventType = "mcu.frame_forwarded"
)

// Types lists every known event type.
var Types = []EventType{LightStateChanged, LightPulsed, FrameForwarded}

// ParseTypes parses a comma separated list of event types.
// An empty string yields nil, which subscribes to everything.
func ParseTypes(s string) ([]EventType, error) {
	var out []EventType
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t := EventType(part)
		if !slices.Contains(Types, t) {
			return nil, errors.InvalidInputf("unknown event type %q", part)
		}
		out = append(out, t)
	}
	return out, nil
}

// Event is a single event emitted by a producer.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates an Event, marshaling data to JSON.
// If marshaling fails the Data field is set to null.
func NewEvent(t EventType, data any) Event {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("null")
	}
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      raw,
	}
}

// SubscriberFunc is a callback invoked for each event.
// It runs on the publisher's goroutine, which may hold a light lock,
// so it must not block and must not call back into the light.
type SubscriberFunc func(Event)

type subscriber struct {
	fn    SubscriberFunc
	types []EventType
}

// Bus is a synchronous fan-out event bus. A nil *Bus is valid and drops
// everything, so producers don't need to check for one.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]subscriber
	nextID      int
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[int]subscriber),
	}
}

// Subscribe registers a callback and returns an unsubscribe function.
// With no types the callback receives every event.
func (b *Bus) Subscribe(fn SubscriberFunc, types ...EventType) func() {
	if b == nil {
		return func() {}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = subscriber{fn: fn, types: types}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
		})
	}
}

// Publish sends an event to all current subscribers interested in its type.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	subs := make([]SubscriberFunc, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		if len(s.types) == 0 || slices.Contains(s.types, e.Type) {
			subs = append(subs, s.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Len returns the number of active subscribers.
func (b *Bus) Len() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
