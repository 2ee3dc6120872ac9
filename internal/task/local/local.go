// Package local implements a task server that keeps the ground truth of the tasks
// in a repository and simulates their progress from the elapsed time.
package local

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/taskmon/internal/clock"
	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/storage"
	"github.com/slok/taskmon/internal/task"
)

const defaultUnitDuration = time.Second

// ServiceConfig is the configuration for the local task service.
type ServiceConfig struct {
	Repository storage.TaskRepository
	Clock      clock.Clock
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Clock == nil {
		c.Clock = clock.Real
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "task.Local"})
	return nil
}

// Service is a task.Service backed by a storage.TaskRepository.
type Service struct {
	repo   storage.TaskRepository
	clock  clock.Clock
	logger log.Logger
	// mu serializes the read-advance-write cycles of this process.
	mu sync.Mutex
}

// NewService creates a new local task service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}, nil
}

var (
	_ task.Service = &Service{}
	_ task.Creator = &Service{}
	_ task.Lister  = &Service{}
)

// CreateTask creates a new pending task.
func (s *Service) CreateTask(ctx context.Context, req task.CreateRequest) (string, error) {
	if req.TotalUnits <= 0 {
		return "", fmt.Errorf("total units must be greater than 0: %w", model.ErrNotValid)
	}
	if req.UnitDuration < 0 {
		return "", fmt.Errorf("unit duration can't be negative: %w", model.ErrNotValid)
	}
	if req.FailAtUnit < 0 || req.FailAtUnit > req.TotalUnits {
		return "", fmt.Errorf("fail at unit must be between 0 and %d: %w", req.TotalUnits, model.ErrNotValid)
	}
	if req.UnitDuration == 0 {
		req.UnitDuration = defaultUnitDuration
	}

	now := s.clock.Now().UTC()
	rec := model.TaskRecord{
		ID:           s.newID(now),
		Name:         req.Name,
		Status:       model.TaskStatusPending,
		TotalUnits:   req.TotalUnits,
		UnitDuration: req.UnitDuration,
		FailAtUnit:   req.FailAtUnit,
		Sequence:     1,
		CreatedAt:    now,
	}
	if err := s.repo.CreateTask(ctx, rec); err != nil {
		return "", fmt.Errorf("could not create task: %w", err)
	}

	s.logger.Infof("Created task %s (%s) with %d units", rec.ID, rec.Name, rec.TotalUnits)
	return rec.ID, nil
}

// FetchSnapshot returns the up to date snapshot of a task.
func (s *Service) FetchSnapshot(ctx context.Context, taskID string) (*model.TaskSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}

	snap := rec.Snapshot()
	return &snap, nil
}

// ListSnapshots returns the up to date snapshots of all the tasks.
func (s *Service) ListSnapshots(ctx context.Context) ([]model.TaskSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	now := s.clock.Now().UTC()
	snaps := make([]model.TaskSnapshot, 0, len(recs))
	for _, rec := range recs {
		if Advance(&rec, now) {
			if err := s.save(ctx, &rec); err != nil {
				return nil, err
			}
		}
		snaps = append(snaps, rec.Snapshot())
	}

	return snaps, nil
}

// StartTask starts a pending task.
func (s *Service) StartTask(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, taskID)
	if err != nil {
		return err
	}

	if rec.Status != model.TaskStatusPending {
		return fmt.Errorf("cannot start task %s in %s status: %w", taskID, rec.Status, model.ErrInvalidState)
	}

	now := s.clock.Now().UTC()
	rec.Status = model.TaskStatusRunning
	rec.ResumedAt = &now
	if err := s.save(ctx, rec); err != nil {
		return err
	}

	s.logger.Infof("Started task %s", taskID)
	return nil
}

// StopTask pauses a running task, it goes back to pending keeping its progress.
func (s *Service) StopTask(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, taskID)
	if err != nil {
		return err
	}

	// The task could have finished in the meantime.
	if rec.Status != model.TaskStatusRunning {
		return fmt.Errorf("cannot stop task %s in %s status: %w", taskID, rec.Status, model.ErrInvalidState)
	}

	rec.Status = model.TaskStatusPending
	rec.ResumedAt = nil
	if err := s.save(ctx, rec); err != nil {
		return err
	}

	s.logger.Infof("Stopped task %s at %d/%d units", taskID, rec.CompletedUnits, rec.TotalUnits)
	return nil
}

// RestartTask creates a new pending task from a finished one. Injected failures
// are not carried to the new task.
func (s *Service) RestartTask(ctx context.Context, taskID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, taskID)
	if err != nil {
		return "", err
	}

	if !rec.Status.Terminal() {
		return "", fmt.Errorf("cannot restart task %s in %s status: %w", taskID, rec.Status, model.ErrInvalidState)
	}

	now := s.clock.Now().UTC()
	newRec := model.TaskRecord{
		ID:            s.newID(now),
		Name:          rec.Name,
		Status:        model.TaskStatusPending,
		TotalUnits:    rec.TotalUnits,
		UnitDuration:  rec.UnitDuration,
		Sequence:      1,
		RestartedFrom: rec.ID,
		CreatedAt:     now,
	}
	if err := s.repo.CreateTask(ctx, newRec); err != nil {
		return "", fmt.Errorf("could not create restarted task: %w", err)
	}

	s.logger.Infof("Restarted task %s as %s", taskID, newRec.ID)
	return newRec.ID, nil
}

// load gets the task and brings it up to date.
func (s *Service) load(ctx context.Context, taskID string) (*model.TaskRecord, error) {
	rec, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	if Advance(rec, s.clock.Now().UTC()) {
		if err := s.save(ctx, rec); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

func (s *Service) save(ctx context.Context, rec *model.TaskRecord) error {
	rec.Sequence++
	if err := s.repo.UpdateTask(ctx, *rec); err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}
	return nil
}

func (s *Service) newID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}
