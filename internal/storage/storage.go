package storage

import (
	"context"

	"github.com/slok/taskmon/internal/model"
)

// TaskRepository is the interface for task record persistence.
type TaskRepository interface {
	CreateTask(ctx context.Context, t model.TaskRecord) error
	GetTask(ctx context.Context, id string) (*model.TaskRecord, error)
	// ListTasks returns the tasks sorted by creation time, newest first.
	ListTasks(ctx context.Context) ([]model.TaskRecord, error)
	UpdateTask(ctx context.Context, t model.TaskRecord) error
}
