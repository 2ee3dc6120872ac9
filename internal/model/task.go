package model

import (
	"fmt"
	"time"
)

// TaskStatus represents the state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Valid returns true when the status is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true when the task will not change anymore.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// ParseTaskStatus parses a raw status into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown task status %q: %w", s, ErrNotValid)
	}
	return status, nil
}

// TaskSnapshot is a point-in-time view of a task as reported by the task service.
type TaskSnapshot struct {
	ID              string
	Status          TaskStatus
	ProgressPercent int
	TotalUnits      int
	CompletedUnits  int
	ErrorCount      int
	// Sequence is the revision of the task on the server, zero when unknown.
	Sequence    int64
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Copy returns a deep copy of the snapshot.
func (s TaskSnapshot) Copy() TaskSnapshot {
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}
	return s
}

// TaskRecord is the server side ground truth of a task.
type TaskRecord struct {
	ID     string
	Name   string
	Status TaskStatus
	// CompletedUnits are the units completed up to ResumedAt (or in total when not running).
	CompletedUnits int
	TotalUnits     int
	ErrorCount     int
	// UnitDuration is the time a running task needs to complete a unit.
	UnitDuration time.Duration
	// FailAtUnit makes the task fail when reaching this unit, zero disables it.
	FailAtUnit    int
	Sequence      int64
	RestartedFrom string
	CreatedAt     time.Time
	ResumedAt     *time.Time
	CompletedAt   *time.Time
}

// Snapshot returns the public snapshot of the record.
func (r TaskRecord) Snapshot() TaskSnapshot {
	snap := TaskSnapshot{
		ID:              r.ID,
		Status:          r.Status,
		ProgressPercent: percent(r.CompletedUnits, r.TotalUnits),
		TotalUnits:      r.TotalUnits,
		CompletedUnits:  r.CompletedUnits,
		ErrorCount:      r.ErrorCount,
		Sequence:        r.Sequence,
		CreatedAt:       r.CreatedAt,
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		snap.CompletedAt = &t
	}

	return snap
}

func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	if done >= total {
		return 100
	}
	return done * 100 / total
}
