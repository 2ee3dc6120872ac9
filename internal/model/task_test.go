package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmon/internal/model"
)

func TestParseTaskStatus(t *testing.T) {
	tests := map[string]struct {
		raw       string
		expStatus model.TaskStatus
		expErr    bool
	}{
		"Pending should be parsed.":   {raw: "pending", expStatus: model.TaskStatusPending},
		"Running should be parsed.":   {raw: "running", expStatus: model.TaskStatusRunning},
		"Completed should be parsed.": {raw: "completed", expStatus: model.TaskStatusCompleted},
		"Failed should be parsed.":    {raw: "failed", expStatus: model.TaskStatusFailed},
		"Unknown status should fail.": {raw: "paused", expErr: true},
		"Empty status should fail.":   {raw: "", expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := model.ParseTaskStatus(test.raw)
			if test.expErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expStatus, got)
		})
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	assert.False(t, model.TaskStatusPending.Terminal())
	assert.False(t, model.TaskStatusRunning.Terminal())
	assert.True(t, model.TaskStatusCompleted.Terminal())
	assert.True(t, model.TaskStatusFailed.Terminal())
}

func TestTaskRecordSnapshot(t *testing.T) {
	createdAt := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	completedAt := createdAt.Add(time.Minute)

	tests := map[string]struct {
		record  model.TaskRecord
		expSnap model.TaskSnapshot
	}{
		"A running record should report its percent.": {
			record: model.TaskRecord{
				ID: "t1", Status: model.TaskStatusRunning, CompletedUnits: 3, TotalUnits: 10,
				Sequence: 4, CreatedAt: createdAt,
			},
			expSnap: model.TaskSnapshot{
				ID: "t1", Status: model.TaskStatusRunning, ProgressPercent: 30, CompletedUnits: 3, TotalUnits: 10,
				Sequence: 4, CreatedAt: createdAt,
			},
		},

		"A record without units should report zero percent.": {
			record: model.TaskRecord{ID: "t1", Status: model.TaskStatusPending, CreatedAt: createdAt},
			expSnap: model.TaskSnapshot{
				ID: "t1", Status: model.TaskStatusPending, CreatedAt: createdAt,
			},
		},

		"A completed record should carry its completion time.": {
			record: model.TaskRecord{
				ID: "t1", Status: model.TaskStatusCompleted, CompletedUnits: 10, TotalUnits: 10,
				ErrorCount: 1, CreatedAt: createdAt, CompletedAt: &completedAt,
			},
			expSnap: model.TaskSnapshot{
				ID: "t1", Status: model.TaskStatusCompleted, ProgressPercent: 100, CompletedUnits: 10, TotalUnits: 10,
				ErrorCount: 1, CreatedAt: createdAt, CompletedAt: &completedAt,
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expSnap, test.record.Snapshot())
		})
	}
}

func TestTaskSnapshotCopy(t *testing.T) {
	completedAt := time.Now()
	orig := model.TaskSnapshot{ID: "t1", CompletedAt: &completedAt}

	cp := orig.Copy()
	*cp.CompletedAt = cp.CompletedAt.Add(time.Hour)

	assert.Equal(t, completedAt, *orig.CompletedAt)
}
