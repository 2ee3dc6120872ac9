package task

import (
	"context"
	"time"

	"github.com/slok/taskmon/internal/model"
)

// Service is the remote side owning the ground truth of tasks.
// Any returned error means the operation did not take effect.
type Service interface {
	// FetchSnapshot returns the current snapshot of a task.
	FetchSnapshot(ctx context.Context, taskID string) (*model.TaskSnapshot, error)

	// StartTask starts a pending task.
	StartTask(ctx context.Context, taskID string) error

	// StopTask stops a running task.
	StopTask(ctx context.Context, taskID string) error

	// RestartTask restarts a finished task as a new task and returns the new task ID.
	RestartTask(ctx context.Context, taskID string) (newTaskID string, err error)
}

// CreateRequest describes a new task.
type CreateRequest struct {
	Name         string
	TotalUnits   int
	UnitDuration time.Duration
	// FailAtUnit makes the task fail when it reaches this unit, zero disables it.
	FailAtUnit int
}

// Creator knows how to create tasks.
type Creator interface {
	CreateTask(ctx context.Context, req CreateRequest) (taskID string, err error)
}

// Lister knows how to list all the task snapshots.
type Lister interface {
	ListSnapshots(ctx context.Context) ([]model.TaskSnapshot, error)
}
