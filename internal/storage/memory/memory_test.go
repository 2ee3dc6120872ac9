package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/storage/memory"
)

func TestRepository(t *testing.T) {
	createdAt := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *memory.Repository)
	}{
		"Creating and getting a task should return the same task.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				rec := model.TaskRecord{ID: "t1", Name: "import", Status: model.TaskStatusPending, TotalUnits: 10, CreatedAt: createdAt}
				require.NoError(t, repo.CreateTask(ctx, rec))

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, rec, *got)
			},
		},

		"Creating a task twice should fail.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				rec := model.TaskRecord{ID: "t1", CreatedAt: createdAt}
				require.NoError(t, repo.CreateTask(ctx, rec))

				err := repo.CreateTask(ctx, rec)
				assert.ErrorIs(t, err, model.ErrAlreadyExists)
			},
		},

		"Getting a missing task should fail with not found.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				_, err := repo.GetTask(ctx, "missing")
				assert.ErrorIs(t, err, model.ErrNotFound)
			},
		},

		"Updating a missing task should fail with not found.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				err := repo.UpdateTask(ctx, model.TaskRecord{ID: "missing"})
				assert.ErrorIs(t, err, model.ErrNotFound)
			},
		},

		"Updating a task should store the new state.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				require.NoError(t, repo.CreateTask(ctx, model.TaskRecord{ID: "t1", Status: model.TaskStatusPending, CreatedAt: createdAt}))

				resumedAt := createdAt.Add(time.Second)
				require.NoError(t, repo.UpdateTask(ctx, model.TaskRecord{ID: "t1", Status: model.TaskStatusRunning, Sequence: 1, CreatedAt: createdAt, ResumedAt: &resumedAt}))

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, model.TaskStatusRunning, got.Status)
				assert.Equal(t, int64(1), got.Sequence)
				assert.Equal(t, resumedAt, *got.ResumedAt)
			},
		},

		"Mutating a returned task should not change the stored one.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				resumedAt := createdAt
				require.NoError(t, repo.CreateTask(ctx, model.TaskRecord{ID: "t1", CreatedAt: createdAt, ResumedAt: &resumedAt}))

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				*got.ResumedAt = createdAt.Add(time.Hour)

				got2, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, createdAt, *got2.ResumedAt)
			},
		},

		"Listing tasks should return newest first.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) {
				require.NoError(t, repo.CreateTask(ctx, model.TaskRecord{ID: "old", CreatedAt: createdAt}))
				require.NoError(t, repo.CreateTask(ctx, model.TaskRecord{ID: "new", CreatedAt: createdAt.Add(time.Minute)}))

				got, err := repo.ListTasks(ctx)
				require.NoError(t, err)
				require.Len(t, got, 2)
				assert.Equal(t, "new", got[0].ID)
				assert.Equal(t, "old", got[1].ID)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: log.Noop})
			require.NoError(t, err)

			test.actions(context.Background(), t, repo)
		})
	}
}
