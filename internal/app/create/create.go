package create

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/monitor"
	"github.com/slok/taskmon/internal/task"
)

// ServiceConfig is the configuration for the create service.
type ServiceConfig struct {
	Creator  task.Creator
	Monitors monitor.EngineFactory
	Logger   log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Creator == nil {
		return fmt.Errorf("creator is required")
	}

	if c.Monitors.Service == nil {
		return fmt.Errorf("task service is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service creates new tasks.
type Service struct {
	creator  task.Creator
	monitors monitor.EngineFactory
	logger   log.Logger
}

// NewService creates a new create service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		creator:  cfg.Creator,
		monitors: cfg.Monitors,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the create request parameters.
type Request struct {
	Name         string
	TotalUnits   int
	UnitDuration time.Duration
	// FailAtUnit makes the task fail at that unit, zero disables it.
	FailAtUnit int
	// Start starts the task right after creating it.
	Start bool
}

// Run creates a task and returns its view.
func (s *Service) Run(ctx context.Context, req Request) (monitor.View, error) {
	s.logger.Debugf("creating task: %s", req.Name)

	id, err := s.creator.CreateTask(ctx, task.CreateRequest{
		Name:         req.Name,
		TotalUnits:   req.TotalUnits,
		UnitDuration: req.UnitDuration,
		FailAtUnit:   req.FailAtUnit,
	})
	if err != nil {
		return monitor.View{}, fmt.Errorf("could not create task: %w", err)
	}

	e, err := s.monitors.NewEngine(id)
	if err != nil {
		return monitor.View{}, fmt.Errorf("could not create task monitor: %w", err)
	}
	defer e.Dispose()

	if err := e.RefreshNow(ctx); err != nil {
		return monitor.View{}, fmt.Errorf("could not get created task %s: %w", id, err)
	}

	if req.Start {
		if err := e.Start(ctx); err != nil {
			return monitor.View{}, fmt.Errorf("could not start created task %s: %w", id, err)
		}
	}

	s.logger.Infof("created task: %s (ID: %s)", req.Name, id)
	return e.View(), nil
}
