package lib_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmon/pkg/lib"
)

const testPollInterval = 10 * time.Millisecond

// newTestClient creates a client with a temp SQLite DB for test isolation.
func newTestClient(t *testing.T) *lib.Client {
	t.Helper()

	client, err := lib.New(context.Background(), lib.Config{
		DBPath:       filepath.Join(t.TempDir(), "test.db"),
		DataDir:      t.TempDir(),
		PollInterval: testPollInterval,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestNew(t *testing.T) {
	tests := map[string]struct {
		cfg   lib.Config
		expIs error
	}{
		"A default config with a custom DB should work.": {
			cfg: lib.Config{},
		},

		"A negative poll interval should fail.": {
			cfg:   lib.Config{PollInterval: -time.Second},
			expIs: lib.ErrNotValid,
		},

		"An exponential backoff should work.": {
			cfg: lib.Config{
				PollInterval: time.Second,
				Backoff:      &lib.BackoffConfig{Type: lib.BackoffExponential, Multiplier: 2, Max: time.Minute},
			},
		},

		"A backoff max lower than the interval should fail.": {
			cfg: lib.Config{
				PollInterval: time.Minute,
				Backoff:      &lib.BackoffConfig{Type: lib.BackoffExponential, Max: time.Second},
			},
			expIs: lib.ErrNotValid,
		},

		"An unknown backoff type should fail.": {
			cfg: lib.Config{
				Backoff: &lib.BackoffConfig{Type: "random"},
			},
			expIs: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			test.cfg.DBPath = filepath.Join(t.TempDir(), "test.db")
			client, err := lib.New(context.Background(), test.cfg)

			if test.expIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, test.expIs)
				return
			}

			require.NoError(t, err)
			assert.NoError(t, client.Close())
		})
	}
}

func TestCreateTask(t *testing.T) {
	tests := map[string]struct {
		opts      lib.CreateTaskOpts
		expStatus lib.TaskStatus
		expIs     error
	}{
		"Creating a task should leave it pending.": {
			opts:      lib.CreateTaskOpts{Name: "reindex", TotalUnits: 10},
			expStatus: lib.TaskStatusPending,
		},

		"Creating a task and starting it should leave it running.": {
			opts:      lib.CreateTaskOpts{Name: "reindex", TotalUnits: 10, UnitDuration: time.Hour, Start: true},
			expStatus: lib.TaskStatusRunning,
		},

		"Creating a task without units should fail.": {
			opts:  lib.CreateTaskOpts{Name: "reindex"},
			expIs: lib.ErrNotValid,
		},

		"Creating a task failing after its last unit should fail.": {
			opts:  lib.CreateTaskOpts{Name: "reindex", TotalUnits: 2, FailAtUnit: 3},
			expIs: lib.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t)

			task, err := client.CreateTask(context.Background(), test.opts)

			if test.expIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, test.expIs)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, task.ID)
			assert.Equal(t, test.expStatus, task.Status)
			assert.Equal(t, test.opts.TotalUnits, task.TotalUnits)
			assert.Equal(t, 0, task.ProgressPercent)
		})
	}
}

func TestGetTaskNotFound(t *testing.T) {
	client := newTestClient(t)

	_, err := client.GetTask(context.Background(), "01JNOTEXISTING")
	require.Error(t, err)
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestListTasks(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	pending, err := client.CreateTask(ctx, lib.CreateTaskOpts{Name: "a", TotalUnits: 5})
	require.NoError(t, err)
	running, err := client.CreateTask(ctx, lib.CreateTaskOpts{Name: "b", TotalUnits: 5, UnitDuration: time.Hour, Start: true})
	require.NoError(t, err)

	all, err := client.ListTasks(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	status := lib.TaskStatusRunning
	filtered, err := client.ListTasks(ctx, &lib.ListTasksOpts{Status: &status})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, running.ID, filtered[0].ID)
	assert.NotEqual(t, pending.ID, filtered[0].ID)

	unknown := lib.TaskStatus("paused")
	_, err = client.ListTasks(ctx, &lib.ListTasksOpts{Status: &unknown})
	assert.ErrorIs(t, err, lib.ErrNotValid)
}

func TestStartStopTask(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	task, err := client.CreateTask(ctx, lib.CreateTaskOpts{Name: "slow", TotalUnits: 5, UnitDuration: time.Hour})
	require.NoError(t, err)
	assert.True(t, task.CanStart)
	assert.False(t, task.CanStop)

	// Stopping a pending task is rejected without calling the server.
	_, err = client.StopTask(ctx, task.ID)
	assert.ErrorIs(t, err, lib.ErrNotAllowed)

	started, err := client.StartTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, lib.TaskStatusRunning, started.Status)
	assert.Equal(t, lib.ColorPrimary, started.Color)
	assert.True(t, started.CanStop)

	_, err = client.StartTask(ctx, task.ID)
	assert.ErrorIs(t, err, lib.ErrNotAllowed)

	stopped, err := client.StopTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, lib.TaskStatusPending, stopped.Status)
	assert.Equal(t, "waiting to start", stopped.StatusText)
	assert.Nil(t, stopped.EstimatedRemaining)
}

func TestWatchTask(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	task, err := client.CreateTask(ctx, lib.CreateTaskOpts{Name: "quick", TotalUnits: 3, UnitDuration: 20 * time.Millisecond})
	require.NoError(t, err)

	var mu sync.Mutex
	var updates []lib.TaskView
	final, err := client.WatchTask(ctx, task.ID, &lib.WatchTaskOpts{
		Start: true,
		OnUpdate: func(v lib.TaskView) {
			mu.Lock()
			defer mu.Unlock()
			updates = append(updates, v)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, lib.TaskStatusCompleted, final.Status)
	assert.Equal(t, 100, final.ProgressPercent)
	assert.Equal(t, lib.ColorSuccess, final.Color)
	assert.True(t, final.CanRestart)
	assert.NotNil(t, final.CompletedAt)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, updates)
	assert.Equal(t, lib.TaskStatusCompleted, updates[len(updates)-1].Status)
}

func TestWatchTaskCancel(t *testing.T) {
	client := newTestClient(t)

	task, err := client.CreateTask(context.Background(), lib.CreateTaskOpts{Name: "slow", TotalUnits: 3, UnitDuration: time.Hour, Start: true})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	last, err := client.WatchTask(ctx, task.ID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, last)
	assert.Equal(t, lib.TaskStatusRunning, last.Status)
}

func TestRestartTask(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	task, err := client.CreateTask(ctx, lib.CreateTaskOpts{Name: "flaky", TotalUnits: 3, UnitDuration: 10 * time.Millisecond, FailAtUnit: 2})
	require.NoError(t, err)

	// Restarting an unfinished task is rejected without calling the server.
	_, err = client.RestartTask(ctx, task.ID, false)
	assert.ErrorIs(t, err, lib.ErrNotAllowed)

	failed, err := client.WatchTask(ctx, task.ID, &lib.WatchTaskOpts{Start: true})
	require.NoError(t, err)
	require.Equal(t, lib.TaskStatusFailed, failed.Status)
	assert.Equal(t, lib.ColorDanger, failed.Color)

	restarted, err := client.RestartTask(ctx, task.ID, false)
	require.NoError(t, err)
	assert.NotEqual(t, task.ID, restarted.ID)
	assert.Equal(t, lib.TaskStatusPending, restarted.Status)

	// The restarted task doesn't carry the injected failure.
	final, err := client.WatchTask(ctx, restarted.ID, &lib.WatchTaskOpts{Start: true})
	require.NoError(t, err)
	assert.Equal(t, lib.TaskStatusCompleted, final.Status)
}
