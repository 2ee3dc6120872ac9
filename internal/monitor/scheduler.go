package monitor

import (
	"sync"
	"time"

	"github.com/slok/taskmon/internal/clock"
	"github.com/slok/taskmon/internal/log"
)

// scheduler runs a recurring tick while armed. There is at most one timer alive,
// the next one is scheduled once the running tick returns so ticks never overlap.
// Every arm and disarm starts a new generation, a tick receives the generation
// it was fired for.
type scheduler struct {
	clock    clock.Clock
	interval time.Duration
	backoff  Backoff
	tick     func(gen uint64) error
	logger   log.Logger

	mu       sync.Mutex
	armed    bool
	timer    clock.Timer
	gen      uint64
	failures int
}

func newScheduler(clk clock.Clock, interval time.Duration, backoff Backoff, tick func(gen uint64) error, logger log.Logger) *scheduler {
	return &scheduler{
		clock:    clk,
		interval: interval,
		backoff:  backoff,
		tick:     tick,
		logger:   logger,
	}
}

// arm starts the recurring tick, returns false if it was already armed.
func (s *scheduler) arm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.armed {
		return false
	}

	s.armed = true
	s.gen++
	s.failures = 0
	s.scheduleLocked(s.interval)
	s.logger.Debugf("Poll scheduler armed every %s", s.interval)

	return true
}

// disarm cancels the recurring tick, a tick already running will not schedule
// a new one. Returns false if it was not armed.
func (s *scheduler) disarm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.armed {
		return false
	}

	s.armed = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.logger.Debugf("Poll scheduler disarmed")

	return true
}

// isCurrent returns true while the scheduler is still armed in generation gen.
func (s *scheduler) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed && s.gen == gen
}

func (s *scheduler) isArmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

func (s *scheduler) scheduleLocked(d time.Duration) {
	gen := s.gen
	s.timer = s.clock.AfterFunc(d, func() { s.fire(gen) })
}

func (s *scheduler) fire(gen uint64) {
	s.mu.Lock()
	if !s.armed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	err := s.tick(gen)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Disarmed (or disarmed and armed again) while ticking.
	if !s.armed || gen != s.gen {
		return
	}

	if err != nil {
		s.failures++
	} else {
		s.failures = 0
	}

	next := s.interval
	if s.failures > 0 && s.backoff != nil {
		next = s.backoff.Next(s.failures)
		s.logger.Debugf("Poll failed %d consecutive times, next poll in %s", s.failures, next)
	}
	s.scheduleLocked(next)
}
