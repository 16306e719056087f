package lights

import (
	"log/slog"

	"github.com/jmylchreest/lightsd/internal/errors"
	"github.com/jmylchreest/lightsd/internal/events"
)

// Options wires a Service to its collaborators.
type Options struct {
	// Hardware applies state; nil discards updates
	Hardware Hardware
	// Link forwards brightness frames to the MCU; nil disables forwarding
	Link Forwarder
	// Bus receives state change events; may be nil
	Bus    *events.Bus
	Logger *slog.Logger
}

// Snapshot is a point-in-time view of one light.
type Snapshot struct {
	ID    ID     `json:"id"`
	Index int    `json:"index"`
	State State  `json:"state"`
	Color string `json:"color_hex"`
}

// Service owns one controller per light and the shared pulse scheduler.
type Service struct {
	lights [Count]*Light
	sched  *Scheduler
	logger *slog.Logger
}

type discardHardware struct{}

func (discardHardware) SetLight(ID, uint32, FlashMode, uint32, uint32, BrightnessMode) error {
	return nil
}

// NewService creates the controllers for every light.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hw := opts.Hardware
	if hw == nil {
		hw = discardHardware{}
	}

	s := &Service{
		sched:  NewScheduler(logger),
		logger: logger,
	}
	for _, id := range AllIDs() {
		s.lights[id] = newLight(id, hw, opts.Link, s.sched, opts.Bus, logger)
	}

	logger.Info("lights: service started", "lights", Count, "mcu_forwarding", opts.Link != nil)
	return s
}

// Light returns the controller for id.
func (s *Service) Light(id ID) (*Light, error) {
	if !id.Valid() {
		return nil, errors.NotFoundf("light %d not found", int(id))
	}
	return s.lights[id], nil
}

// Lights returns every controller in index order.
func (s *Service) Lights() []*Light {
	out := make([]*Light, Count)
	copy(out, s.lights[:])
	return out
}

// Snapshot returns the state of one light.
func (s *Service) Snapshot(id ID) (Snapshot, error) {
	l, err := s.Light(id)
	if err != nil {
		return Snapshot{}, err
	}
	return snapshotOf(l), nil
}

// Snapshots returns the state of every light in index order.
func (s *Service) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, Count)
	for _, l := range s.lights {
		out = append(out, snapshotOf(l))
	}
	return out
}

func snapshotOf(l *Light) Snapshot {
	st := l.State()
	return Snapshot{ID: l.id, Index: int(l.id), State: st, Color: ColorHex(st.Color)}
}

// PendingPulses returns the number of auto-off timers still waiting.
func (s *Service) PendingPulses() int {
	return s.sched.Pending()
}

// Close stops the pulse scheduler. Pending auto-offs are discarded.
func (s *Service) Close() {
	s.sched.Stop()
	s.logger.Info("lights: service stopped")
}
