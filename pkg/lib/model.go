package lib

import (
	"errors"
	"time"

	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/monitor"
)

// TaskStatus represents the lifecycle state of a task.
//
// The typical lifecycle is:
//
//	pending -> running -> completed
//
// A running task can be stopped back to pending, or fail. Finished tasks
// (completed or failed) can be restarted as a new task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task is waiting to be started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the task is making progress.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the task finished all its units.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task stopped with an error.
	TaskStatusFailed TaskStatus = "failed"
)

// Task is a read-only snapshot of a task at the time of the API call.
type Task struct {
	// ID is the unique identifier (ULID) assigned at creation.
	ID string
	// Status is the current lifecycle state.
	Status TaskStatus
	// ProgressPercent is the completion percentage in [0, 100].
	ProgressPercent int
	// TotalUnits is the amount of work units of the task.
	TotalUnits int
	// CompletedUnits is the amount of work units already done.
	CompletedUnits int
	// ErrorCount is the number of errors the task has reported.
	ErrorCount int
	// CreatedAt is when the task was created.
	CreatedAt time.Time
	// CompletedAt is when the task finished. Nil if not finished.
	CompletedAt *time.Time
}

// Color is the display color class of a task status.
type Color string

const (
	ColorInfo    Color = "info"
	ColorPrimary Color = "primary"
	ColorSuccess Color = "success"
	ColorDanger  Color = "danger"
)

// TaskView is a task with the information derived from it for display.
type TaskView struct {
	Task
	// StatusText is the human readable status.
	StatusText string
	// Color is the display color class of the status.
	Color Color
	// EstimatedRemaining is the estimated time until completion.
	// Nil when the task is not running or it can't be estimated yet.
	EstimatedRemaining *time.Duration
	// EstimateText is the human readable estimate, empty when the task is not running.
	EstimateText string
	// CanStart, CanStop and CanRestart tell which commands the task accepts.
	CanStart   bool
	CanStop    bool
	CanRestart bool
}

// StatusChange is notified by a [Monitor] when the status of its task changes.
// Previous is empty for the first status seen.
type StatusChange struct {
	TaskID   string
	Previous TaskStatus
	Current  TaskStatus
}

// MonitorState is the state of a [Monitor] at the time of the call.
type MonitorState struct {
	// Task is the last known task snapshot. Nil if not fetched yet.
	Task *Task
	// LastError is the last operation error, empty if none.
	LastError string
	// Polling is true while the monitor polls the task.
	Polling bool
	// Refreshing is true while a manual refresh is running.
	Refreshing bool
	// CommandInFlight is the command being run ("start", "stop", "restart"), empty if none.
	CommandInFlight string
}

// BackoffType identifies how the poll interval grows after consecutive failures.
type BackoffType string

const (
	// BackoffFixed keeps the poll interval constant.
	BackoffFixed BackoffType = "fixed"
	// BackoffExponential multiplies the poll interval on every consecutive failure.
	BackoffExponential BackoffType = "exponential"
)

// BackoffConfig configures the poll backoff of the monitors.
type BackoffConfig struct {
	Type BackoffType
	// Multiplier is used by [BackoffExponential]. Default: 2.
	Multiplier float64
	// Max caps the poll interval, zero means no cap.
	Max time.Duration
}

// CreateTaskOpts are the options to create a task.
type CreateTaskOpts struct {
	// Name is the human-friendly name.
	Name string
	// TotalUnits is the amount of work units. Required.
	TotalUnits int
	// UnitDuration is the time a unit takes. Default: 1s.
	UnitDuration time.Duration
	// FailAtUnit makes the task fail when reaching this unit, zero disables it.
	FailAtUnit int
	// Start starts the task right after creating it.
	Start bool
}

// ListTasksOpts are the options to list tasks.
type ListTasksOpts struct {
	// Status filters by status. Nil lists all the tasks.
	Status *TaskStatus
}

// WatchTaskOpts are the options to watch a task.
type WatchTaskOpts struct {
	// Start starts the task first if it's pending.
	Start bool
	// OnUpdate is called with every new snapshot of the task.
	OnUpdate func(TaskView)
}

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned on invalid input.
	ErrNotValid = errors.New("not valid")
	// ErrInvalidState is returned when the task server rejects an operation in the current task state.
	ErrInvalidState = errors.New("invalid state")
	// ErrNotAllowed is returned when a monitor rejects a command for the known task state.
	ErrNotAllowed = errors.New("not allowed")
	// ErrInFlight is returned when the same kind of operation is already running.
	ErrInFlight = errors.New("in flight")
	// ErrClosed is returned when using a closed monitor.
	ErrClosed = errors.New("closed")
)

// --- Conversion helpers ---

func fromInternalTask(s model.TaskSnapshot) Task {
	t := Task{
		ID:              s.ID,
		Status:          TaskStatus(s.Status),
		ProgressPercent: s.ProgressPercent,
		TotalUnits:      s.TotalUnits,
		CompletedUnits:  s.CompletedUnits,
		ErrorCount:      s.ErrorCount,
		CreatedAt:       s.CreatedAt,
	}
	if s.CompletedAt != nil {
		c := *s.CompletedAt
		t.CompletedAt = &c
	}
	return t
}

func fromInternalTaskList(ss []model.TaskSnapshot) []Task {
	tasks := make([]Task, 0, len(ss))
	for _, s := range ss {
		tasks = append(tasks, fromInternalTask(s))
	}
	return tasks
}

func fromInternalView(v monitor.View) TaskView {
	tv := TaskView{
		StatusText: v.StatusText(),
		Color:      Color(v.Color()),
		CanStart:   v.CanStart(),
		CanStop:    v.CanStop(),
		CanRestart: v.CanRestart(),
	}
	if snap := v.Snapshot(); snap != nil {
		tv.Task = fromInternalTask(*snap)
	}

	est := v.EstimatedTimeRemaining()
	tv.EstimateText = est.String()
	if est.State == monitor.EstimateKnown {
		r := est.Remaining
		tv.EstimatedRemaining = &r
	}

	return tv
}

func fromInternalState(s monitor.State) MonitorState {
	ms := MonitorState{
		LastError:       s.LastError,
		Polling:         s.IsPolling,
		Refreshing:      s.IsManualRefreshInFlight,
		CommandInFlight: string(s.CommandInFlight),
	}
	if s.Snapshot != nil {
		t := fromInternalTask(*s.Snapshot)
		ms.Task = &t
	}
	return ms
}

func toInternalStatusFilter(opts *ListTasksOpts) model.TaskStatus {
	if opts == nil || opts.Status == nil {
		return ""
	}
	return model.TaskStatus(*opts.Status)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	case errors.Is(err, model.ErrInvalidState):
		return joinErrors(err, ErrInvalidState)
	case errors.Is(err, monitor.ErrNotAllowed):
		return joinErrors(err, ErrNotAllowed)
	case errors.Is(err, monitor.ErrInFlight):
		return joinErrors(err, ErrInFlight)
	case errors.Is(err, monitor.ErrDisposed):
		return joinErrors(err, ErrClosed)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
