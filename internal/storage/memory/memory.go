package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.TaskRepository.
type Repository struct {
	tasks  map[string]model.TaskRecord
	mu     sync.RWMutex
	logger log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		tasks:  make(map[string]model.TaskRecord),
		logger: cfg.Logger,
	}, nil
}

// CreateTask stores a new task.
func (r *Repository) CreateTask(ctx context.Context, t model.TaskRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; ok {
		return fmt.Errorf("task with id %s: %w", t.ID, model.ErrAlreadyExists)
	}

	r.tasks[t.ID] = copyRecord(t)
	r.logger.Debugf("Created task in repository: %s", t.ID)

	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.TaskRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	t = copyRecord(t)
	return &t, nil
}

// ListTasks returns all tasks, newest first.
func (r *Repository) ListTasks(ctx context.Context) ([]model.TaskRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.TaskRecord, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, copyRecord(t))
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// UpdateTask updates an existing task.
func (r *Repository) UpdateTask(ctx context.Context, t model.TaskRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[t.ID]; !ok {
		return fmt.Errorf("task %s: %w", t.ID, model.ErrNotFound)
	}

	r.tasks[t.ID] = copyRecord(t)
	r.logger.Debugf("Updated task in repository: %s", t.ID)

	return nil
}

// copyRecord makes sure callers can't mutate the stored time pointers.
func copyRecord(t model.TaskRecord) model.TaskRecord {
	if t.ResumedAt != nil {
		v := *t.ResumedAt
		t.ResumedAt = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		t.CompletedAt = &v
	}
	return t
}
