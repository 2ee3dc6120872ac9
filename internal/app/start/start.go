package start

import (
	"context"
	"fmt"

	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/monitor"
)

// ServiceConfig is the configuration for the start service.
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

// Service starts a pending task.
type Service struct {
	monitors monitor.EngineFactory
	logger   log.Logger
}

// NewService creates a new start service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		monitors: cfg.Monitors,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the start request parameters.
type Request struct {
	// TaskID is the task to start.
	TaskID string
}

// Run starts a task and returns its view after the start.
// It validates the task is pending before sending the command.
func (s *Service) Run(ctx context.Context, req Request) (monitor.View, error) {
	s.logger.Debugf("starting task: %s", req.TaskID)

	e, err := s.monitors.NewEngine(req.TaskID)
	if err != nil {
		return monitor.View{}, fmt.Errorf("could not create task monitor: %w", err)
	}
	defer e.Dispose()

	if err := e.RefreshNow(ctx); err != nil {
		return monitor.View{}, fmt.Errorf("could not get task: %w", err)
	}

	if err := e.Start(ctx); err != nil {
		return monitor.View{}, err
	}

	view := e.View()
	s.logger.Infof("started task: %s (%s)", req.TaskID, view.StatusText())
	return view, nil
}
