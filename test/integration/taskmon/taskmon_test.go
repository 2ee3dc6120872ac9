package taskmon_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inttaskmon "github.com/slok/taskmon/test/integration/taskmon"
)

// newTestDB returns a fresh SQLite database path for test isolation.
func newTestDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test-taskmon.db")
}

// uniqueName generates a unique task name for test isolation.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// listItem matches the JSON output of `taskmon list --format json`.
type listItem struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	ProgressPercent int    `json:"progress_percent"`
}

// statusOutput matches the JSON output of `taskmon status --format json`.
type statusOutput struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	StatusText      string   `json:"status_text"`
	ProgressPercent int      `json:"progress_percent"`
	CompletedUnits  int      `json:"completed_units"`
	ErrorCount      int      `json:"error_count"`
	Actions         []string `json:"actions"`
}

func parseStatus(t *testing.T, data []byte) statusOutput {
	t.Helper()
	var out statusOutput
	require.NoError(t, json.Unmarshal(data, &out), "output: %s", data)
	return out
}

func TestTaskLifecycle(t *testing.T) {
	config := inttaskmon.NewConfig(t)
	dbPath := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Create.
	stdout, stderr, err := inttaskmon.RunCreate(ctx, config, dbPath, uniqueName("lifecycle"), 5, 0)
	require.NoError(t, err, "create failed: %s", stderr)
	created := parseStatus(t, stdout)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, []string{"start"}, created.Actions)

	// Start and stop keeps the task progress.
	stdout, stderr, err = inttaskmon.RunStart(ctx, config, dbPath, created.ID)
	require.NoError(t, err, "start failed: %s", stderr)
	assert.Equal(t, "running", parseStatus(t, stdout).Status)

	time.Sleep(250 * time.Millisecond)

	stdout, stderr, err = inttaskmon.RunStop(ctx, config, dbPath, created.ID)
	require.NoError(t, err, "stop failed: %s", stderr)
	stopped := parseStatus(t, stdout)
	assert.Equal(t, "pending", stopped.Status)
	assert.Greater(t, stopped.CompletedUnits, 0)

	// Stopping again is not allowed.
	_, _, err = inttaskmon.RunStop(ctx, config, dbPath, created.ID)
	assert.Error(t, err)

	// Watch until completion.
	stdout, stderr, err = inttaskmon.RunWatch(ctx, config, dbPath, created.ID)
	require.NoError(t, err, "watch failed: %s", stderr)
	final := parseStatus(t, stdout)
	assert.Equal(t, "completed", final.Status)
	assert.Equal(t, 100, final.ProgressPercent)
	assert.Equal(t, []string{"restart"}, final.Actions)

	// Status of a finished task is stable.
	stdout, stderr, err = inttaskmon.RunStatus(ctx, config, dbPath, created.ID)
	require.NoError(t, err, "status failed: %s", stderr)
	assert.Equal(t, "done", parseStatus(t, stdout).StatusText)
}

func TestTaskFailureAndRestart(t *testing.T) {
	config := inttaskmon.NewConfig(t)
	dbPath := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stdout, stderr, err := inttaskmon.RunCreate(ctx, config, dbPath, uniqueName("flaky"), 4, 2)
	require.NoError(t, err, "create failed: %s", stderr)
	created := parseStatus(t, stdout)

	stdout, stderr, err = inttaskmon.RunWatch(ctx, config, dbPath, created.ID)
	require.NoError(t, err, "watch failed: %s", stderr)
	failed := parseStatus(t, stdout)
	assert.Equal(t, "failed", failed.Status)
	assert.Equal(t, 50, failed.ProgressPercent)
	assert.Equal(t, 1, failed.ErrorCount)

	stdout, stderr, err = inttaskmon.RunRestart(ctx, config, dbPath, created.ID)
	require.NoError(t, err, "restart failed: %s", stderr)
	restarted := parseStatus(t, stdout)
	assert.NotEqual(t, created.ID, restarted.ID)
	assert.Equal(t, "pending", restarted.Status)

	stdout, stderr, err = inttaskmon.RunList(ctx, config, dbPath)
	require.NoError(t, err, "list failed: %s", stderr)
	var items []listItem
	require.NoError(t, json.Unmarshal(stdout, &items))
	require.Len(t, items, 2)

	ids := []string{items[0].ID, items[1].ID}
	assert.ElementsMatch(t, []string{created.ID, restarted.ID}, ids)
}

func TestStatusNotFound(t *testing.T) {
	config := inttaskmon.NewConfig(t)
	dbPath := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _, err := inttaskmon.RunStatus(ctx, config, dbPath, "01JDOESNOTEXIST")
	assert.Error(t, err)
}
