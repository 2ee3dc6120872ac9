package watch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/monitor"
)

// ServiceConfig is the configuration for the watch service.
type ServiceConfig struct {
	Monitors monitor.EngineFactory
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Monitors.Service == nil {
		return fmt.Errorf("task service is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service follows a task until it stops running.
type Service struct {
	monitors monitor.EngineFactory
	logger   log.Logger
}

// NewService creates a new watch service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		monitors: cfg.Monitors,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the watch request parameters.
type Request struct {
	// TaskID is the task to watch.
	TaskID string
	// Start starts the task first if it's pending.
	Start bool
	// OnUpdate is called with the view of every new snapshot, it can be called
	// concurrently with Run.
	OnUpdate func(monitor.View)
}

// Run polls the task while it's running and returns its last view once it's not
// running anymore. A task that is not running when the watch starts returns right
// away. Cancelling ctx stops the watch returning the last known view.
func (s *Service) Run(ctx context.Context, req Request) (monitor.View, error) {
	s.logger.Debugf("watching task: %s", req.TaskID)

	e, err := s.monitors.NewEngine(req.TaskID)
	if err != nil {
		return monitor.View{}, fmt.Errorf("could not create task monitor: %w", err)
	}
	defer e.Dispose()

	var watching atomic.Bool
	done := make(chan struct{})
	var doneOnce sync.Once
	e.OnSnapshot(func(snap model.TaskSnapshot) {
		if req.OnUpdate != nil {
			req.OnUpdate(e.View())
		}
		if watching.Load() && snap.Status != model.TaskStatusRunning {
			doneOnce.Do(func() { close(done) })
		}
	})

	if err := e.RefreshNow(ctx); err != nil {
		return monitor.View{}, fmt.Errorf("could not get task: %w", err)
	}

	if req.Start && e.View().CanStart() {
		if err := e.Start(ctx); err != nil {
			return monitor.View{}, err
		}
	}

	watching.Store(true)
	if !e.State().IsPolling {
		return e.View(), nil
	}

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Debugf("watch of task %s cancelled", req.TaskID)
		return e.View(), ctx.Err()
	}

	view := e.View()
	s.logger.Infof("stopped watching task %s: %s", req.TaskID, view.StatusText())
	return view, nil
}
