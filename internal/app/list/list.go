package list

import (
	"context"
	"fmt"

	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/task"
)

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Lister task.Lister
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Lister == nil {
		return fmt.Errorf("lister is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists tasks.
type Service struct {
	lister task.Lister
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		lister: cfg.Lister,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// Status filters the tasks by status, empty lists all of them.
	Status model.TaskStatus
}

// Run returns the tasks, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.TaskSnapshot, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, fmt.Errorf("unknown status filter %q: %w", req.Status, model.ErrNotValid)
	}

	tasks, err := s.lister.ListSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	if req.Status == "" {
		s.logger.Debugf("listed %d tasks", len(tasks))
		return tasks, nil
	}

	filtered := make([]model.TaskSnapshot, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == req.Status {
			filtered = append(filtered, t)
		}
	}
	s.logger.Debugf("listed %d of %d tasks with %s status", len(filtered), len(tasks), req.Status)

	return filtered, nil
}
