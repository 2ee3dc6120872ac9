package restart

import (
	"context"
	"fmt"

	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/monitor"
)

// ServiceConfig is the configuration for the restart service.
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

// Service restarts a finished task as a new task.
type Service struct {
	monitors monitor.EngineFactory
	logger   log.Logger
}

// NewService creates a new restart service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		monitors: cfg.Monitors,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the restart request parameters.
type Request struct {
	// TaskID is the finished task to restart.
	TaskID string
	// Start starts the new task right away.
	Start bool
}

// Run restarts a task and returns the view of the new task.
func (s *Service) Run(ctx context.Context, req Request) (monitor.View, error) {
	s.logger.Debugf("restarting task: %s", req.TaskID)

	e, err := s.monitors.NewEngine(req.TaskID)
	if err != nil {
		return monitor.View{}, fmt.Errorf("could not create task monitor: %w", err)
	}
	defer e.Dispose()

	if err := e.RefreshNow(ctx); err != nil {
		return monitor.View{}, fmt.Errorf("could not get task: %w", err)
	}

	newID, err := e.Restart(ctx)
	if err != nil {
		return monitor.View{}, err
	}

	if err := e.SetTarget(newID); err != nil {
		return monitor.View{}, fmt.Errorf("could not monitor restarted task: %w", err)
	}
	if err := e.RefreshNow(ctx); err != nil {
		return monitor.View{}, fmt.Errorf("could not get restarted task %s: %w", newID, err)
	}

	if req.Start {
		if err := e.Start(ctx); err != nil {
			return monitor.View{}, fmt.Errorf("could not start restarted task %s: %w", newID, err)
		}
	}

	s.logger.Infof("restarted task: %s as %s", req.TaskID, newID)
	return e.View(), nil
}
