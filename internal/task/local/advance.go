package local

import (
	"time"

	"github.com/slok/taskmon/internal/model"
)

// Advance brings a running record up to now. It returns true when the record changed.
//
// While running, CompletedUnits are the units completed at ResumedAt, advancing
// moves ResumedAt forward by the whole units consumed so partial units are not lost.
func Advance(rec *model.TaskRecord, now time.Time) bool {
	if rec.Status != model.TaskStatusRunning || rec.ResumedAt == nil || rec.UnitDuration <= 0 {
		return false
	}

	elapsed := now.Sub(*rec.ResumedAt)
	if elapsed < rec.UnitDuration {
		return false
	}

	units := int(elapsed / rec.UnitDuration)
	target := rec.CompletedUnits + units

	limit := rec.TotalUnits
	failing := rec.FailAtUnit > 0 && rec.FailAtUnit <= rec.TotalUnits
	if failing {
		limit = rec.FailAtUnit
	}
	if target > limit {
		target = limit
	}

	consumed := target - rec.CompletedUnits
	resumedAt := rec.ResumedAt.Add(time.Duration(consumed) * rec.UnitDuration)
	rec.CompletedUnits = target
	rec.ResumedAt = &resumedAt

	switch {
	case failing && target >= rec.FailAtUnit:
		rec.Status = model.TaskStatusFailed
		rec.ErrorCount++
		rec.ResumedAt = nil
		rec.CompletedAt = &resumedAt
	case target >= rec.TotalUnits:
		rec.Status = model.TaskStatusCompleted
		rec.ResumedAt = nil
		rec.CompletedAt = &resumedAt
	}

	return true
}
