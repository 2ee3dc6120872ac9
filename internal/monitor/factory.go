package monitor

import (
	"fmt"

	"github.com/slok/taskmon/internal/clock"
	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/task"
)

// EngineFactory creates engines sharing the same task service and timing.
type EngineFactory struct {
	Service task.Service
	Config  model.MonitorConfig
	Clock   clock.Clock
	Logger  log.Logger
}

// NewEngine returns a new engine monitoring taskID.
func (f EngineFactory) NewEngine(taskID string) (*Engine, error) {
	interval := f.Config.Interval
	if interval == 0 {
		interval = DefaultInterval
	}

	backoff, err := NewBackoff(interval, f.Config.Backoff)
	if err != nil {
		return nil, fmt.Errorf("invalid backoff: %w", err)
	}

	return NewEngine(EngineConfig{
		TaskID:   taskID,
		Service:  f.Service,
		Clock:    f.Clock,
		Interval: interval,
		Backoff:  backoff,
		Logger:   f.Logger,
	})
}
