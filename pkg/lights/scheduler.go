package lights

import (
	"container/heap"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/lightsd/internal/metrics"
)

type timer struct {
	at  time.Time
	seq uint64
	fn  func()
}

type timerHeap []timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)   { *h = append(*h, x.(timer)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = timer{}
	*h = old[:n-1]
	return t
}

// Scheduler runs one-shot callbacks after a delay on a single worker
// goroutine. Timers cannot be cancelled and are never coalesced: every
// Schedule call fires once, in deadline order.
type Scheduler struct {
	mu      sync.Mutex
	timers  timerHeap
	seq     uint64
	stopped bool

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// NewScheduler starts the worker.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.run()
	return s
}

// Schedule queues fn to run once delay has elapsed from now. It returns
// false if the scheduler has been stopped.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	s.seq++
	heap.Push(&s.timers, timer{at: time.Now().Add(delay), seq: s.seq, fn: fn})
	n := len(s.timers)
	s.mu.Unlock()

	metrics.SetPendingPulseTimers(n)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// Pending returns the number of timers that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop ends the worker. Timers still pending are discarded.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		close(s.stop)
		<-s.done

		s.mu.Lock()
		if n := len(s.timers); n > 0 {
			s.logger.Debug("scheduler: discarding pending timers", "count", n)
		}
		s.timers = nil
		s.mu.Unlock()
		metrics.SetPendingPulseTimers(0)
	})
}

func (s *Scheduler) run() {
	defer close(s.done)
	for {
		due, wait, pending := s.takeDue(time.Now())
		for _, fn := range due {
			s.invoke(fn)
		}
		if len(due) > 0 {
			continue
		}

		var fire <-chan time.Time
		var t *time.Timer
		if pending {
			t = time.NewTimer(wait)
			fire = t.C
		}

		select {
		case <-s.stop:
			if t != nil {
				t.Stop()
			}
			return
		case <-s.wake:
		case <-fire:
		}
		if t != nil {
			t.Stop()
		}
	}
}

// takeDue pops every timer due at now and reports how long until the next one.
func (s *Scheduler) takeDue(now time.Time) ([]func(), time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []func()
	for len(s.timers) > 0 && !s.timers[0].at.After(now) {
		due = append(due, heap.Pop(&s.timers).(timer).fn)
	}
	if len(due) > 0 {
		metrics.SetPendingPulseTimers(len(s.timers))
	}
	if len(s.timers) == 0 {
		return due, 0, false
	}
	return due, s.timers[0].at.Sub(now), true
}

func (s *Scheduler) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler: timer callback panicked", "panic", r)
		}
	}()
	fn()
}
