package taskmon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/taskmon/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "taskmon"
	}

	// go test changes the CWD to the test package directory, relative paths would be ambiguous.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("TASKMON_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("taskmon binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "TASKMON_INTEGRATION"
		envBinary     = "TASKMON_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// RunTaskmonCmd runs a taskmon command with the given arguments and a specific db path.
func RunTaskmonCmd(ctx context.Context, config Config, dbPath, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("--no-log --interval 50ms --db-path %s %s", dbPath, cmdArgs)
	return testutils.RunTaskmon(ctx, nil, config.Binary, args, true)
}

// RunCreate creates a task with fast units.
func RunCreate(ctx context.Context, config Config, dbPath, name string, units, failAt int) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("create --name %s --units %d --unit-duration 100ms --fail-at-unit %d --format json", name, units, failAt)
	return RunTaskmonCmd(ctx, config, dbPath, args)
}

// RunStart starts a task.
func RunStart(ctx context.Context, config Config, dbPath, id string) (stdout, stderr []byte, err error) {
	return RunTaskmonCmd(ctx, config, dbPath, fmt.Sprintf("start %s --format json", id))
}

// RunStop stops a task.
func RunStop(ctx context.Context, config Config, dbPath, id string) (stdout, stderr []byte, err error) {
	return RunTaskmonCmd(ctx, config, dbPath, fmt.Sprintf("stop %s --format json", id))
}

// RunRestart restarts a finished task.
func RunRestart(ctx context.Context, config Config, dbPath, id string) (stdout, stderr []byte, err error) {
	return RunTaskmonCmd(ctx, config, dbPath, fmt.Sprintf("restart %s --format json", id))
}

// RunStatus gets a task status in JSON format.
func RunStatus(ctx context.Context, config Config, dbPath, id string) (stdout, stderr []byte, err error) {
	return RunTaskmonCmd(ctx, config, dbPath, fmt.Sprintf("status %s --format json", id))
}

// RunWatch watches a task until it's not running, starting it first.
func RunWatch(ctx context.Context, config Config, dbPath, id string) (stdout, stderr []byte, err error) {
	return RunTaskmonCmd(ctx, config, dbPath, fmt.Sprintf("watch %s --start --format json", id))
}

// RunList lists tasks in JSON format.
func RunList(ctx context.Context, config Config, dbPath string) (stdout, stderr []byte, err error) {
	return RunTaskmonCmd(ctx, config, dbPath, "list --format json")
}
