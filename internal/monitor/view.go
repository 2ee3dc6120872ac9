package monitor

import (
	"time"

	"github.com/slok/taskmon/internal/model"
)

// Color is the display color class of a task status.
type Color string

const (
	ColorInfo    Color = "info"
	ColorPrimary Color = "primary"
	ColorSuccess Color = "success"
	ColorDanger  Color = "danger"
)

// EstimateState tells if an Estimate has a value.
type EstimateState int

const (
	// EstimateUnavailable is used when the task is not running.
	EstimateUnavailable EstimateState = iota
	// EstimateCalculating is used while running without any unit completed.
	EstimateCalculating
	// EstimateKnown is used when Remaining has a value.
	EstimateKnown
)

// EstimateCalculatingText is the text of an estimate still being calculated.
const EstimateCalculatingText = "unknown — still calculating"

// Estimate is the estimated time remaining of a task.
type Estimate struct {
	State     EstimateState
	Remaining time.Duration
}

func (e Estimate) String() string {
	switch e.State {
	case EstimateCalculating:
		return EstimateCalculatingText
	case EstimateKnown:
		return e.Remaining.Round(time.Second).String()
	default:
		return ""
	}
}

// View computes the derived information of a snapshot. It is a value, recomputed
// every time it's requested from the engine.
type View struct {
	snapshot        *model.TaskSnapshot
	now             time.Time
	commandInFlight bool
}

// NewView returns the view of snapshot (nil when not fetched yet) at now.
func NewView(snapshot *model.TaskSnapshot, now time.Time, commandInFlight bool) View {
	return View{snapshot: snapshot, now: now, commandInFlight: commandInFlight}
}

// Snapshot returns the snapshot of the view, nil when there is none.
func (v View) Snapshot() *model.TaskSnapshot {
	if v.snapshot == nil {
		return nil
	}
	cp := v.snapshot.Copy()
	return &cp
}

// ProgressPercent returns the task progress, 0 without a snapshot.
func (v View) ProgressPercent() int {
	if v.snapshot == nil {
		return 0
	}
	return v.snapshot.ProgressPercent
}

// StatusText returns the human readable status of the task.
func (v View) StatusText() string {
	if v.snapshot == nil {
		return "fetching status"
	}

	switch v.snapshot.Status {
	case model.TaskStatusPending:
		return "waiting to start"
	case model.TaskStatusRunning:
		return "in progress"
	case model.TaskStatusCompleted:
		return "done"
	case model.TaskStatusFailed:
		return "failed"
	default:
		return string(v.snapshot.Status)
	}
}

// EstimatedTimeRemaining extrapolates linearly the time per unit since the task
// creation. It's an approximation that is off when the task is paused or the
// number of units changes.
func (v View) EstimatedTimeRemaining() Estimate {
	if v.snapshot == nil || v.snapshot.Status != model.TaskStatusRunning {
		return Estimate{State: EstimateUnavailable}
	}

	done := v.snapshot.CompletedUnits
	if done <= 0 {
		return Estimate{State: EstimateCalculating}
	}

	left := v.snapshot.TotalUnits - done
	if left < 0 {
		left = 0
	}
	elapsed := v.now.Sub(v.snapshot.CreatedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := time.Duration(float64(elapsed) / float64(done) * float64(left))
	return Estimate{State: EstimateKnown, Remaining: remaining}
}

// Color returns the display color class of the task status.
func (v View) Color() Color {
	if v.snapshot == nil {
		return ColorInfo
	}

	switch v.snapshot.Status {
	case model.TaskStatusRunning:
		return ColorPrimary
	case model.TaskStatusCompleted:
		return ColorSuccess
	case model.TaskStatusFailed:
		return ColorDanger
	default:
		return ColorInfo
	}
}

// CanStart returns true when the task is pending and no command is running.
func (v View) CanStart() bool { return !v.commandInFlight && canStart(v.snapshot) }

// CanStop returns true when the task is running and no command is running.
func (v View) CanStop() bool { return !v.commandInFlight && canStop(v.snapshot) }

// CanRestart returns true when the task is finished and no command is running.
func (v View) CanRestart() bool { return !v.commandInFlight && canRestart(v.snapshot) }

func canStart(s *model.TaskSnapshot) bool {
	return s != nil && s.Status == model.TaskStatusPending
}

func canStop(s *model.TaskSnapshot) bool {
	return s != nil && s.Status == model.TaskStatusRunning
}

func canRestart(s *model.TaskSnapshot) bool {
	return s != nil && s.Status.Terminal()
}
