package status

import (
	"context"
	"fmt"

	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/monitor"
)

// ServiceConfig is the configuration for the status service.
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

// Service retrieves the task status.
type Service struct {
	monitors monitor.EngineFactory
	logger   log.Logger
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		monitors: cfg.Monitors,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the status request parameters.
type Request struct {
	// TaskID is the task to query.
	TaskID string
}

// Run retrieves the up to date status of a task.
func (s *Service) Run(ctx context.Context, req Request) (monitor.View, error) {
	s.logger.Debugf("getting status for task: %s", req.TaskID)

	e, err := s.monitors.NewEngine(req.TaskID)
	if err != nil {
		return monitor.View{}, fmt.Errorf("could not create task monitor: %w", err)
	}
	defer e.Dispose()

	if err := e.RefreshNow(ctx); err != nil {
		return monitor.View{}, fmt.Errorf("could not get task status: %w", err)
	}

	return e.View(), nil
}
