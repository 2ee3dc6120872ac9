package lib_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/slok/taskmon/pkg/lib"
)

// This example shows how to create a client with a temporary database for testing.
func Example_testing() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "taskmon-example-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "taskmon.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	task, err := client.CreateTask(ctx, lib.CreateTaskOpts{
		Name:       "reindex",
		TotalUnits: 10,
	})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Created task (status: %s, progress: %d%%)\n", task.Status, task.ProgressPercent)

	// Output:
	// Created task (status: pending, progress: 0%)
}

// This example shows how to run a task until it finishes.
func Example_watch() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "taskmon-example-watch-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath:       filepath.Join(dir, "taskmon.db"),
		PollInterval: 10 * time.Millisecond,
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	task, err := client.CreateTask(ctx, lib.CreateTaskOpts{
		Name:         "quick",
		TotalUnits:   2,
		UnitDuration: 10 * time.Millisecond,
	})
	if err != nil {
		panic(err)
	}

	final, err := client.WatchTask(ctx, task.ID, &lib.WatchTaskOpts{Start: true})
	if err != nil {
		panic(err)
	}

	fmt.Printf("%s: %d%% (%s)\n", final.Status, final.ProgressPercent, final.StatusText)

	// Output:
	// completed: 100% (done)
}

// This example shows how to follow a task with a monitor.
func Example_monitor() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "taskmon-example-monitor-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath:       filepath.Join(dir, "taskmon.db"),
		PollInterval: 10 * time.Millisecond,
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	task, err := client.CreateTask(ctx, lib.CreateTaskOpts{
		Name:         "quick",
		TotalUnits:   2,
		UnitDuration: 10 * time.Millisecond,
	})
	if err != nil {
		panic(err)
	}

	m, err := client.Monitor(task.ID)
	if err != nil {
		panic(err)
	}
	defer m.Close()

	done := make(chan struct{})
	m.OnStatusChange(func(c lib.StatusChange) {
		fmt.Printf("%q -> %q\n", c.Previous, c.Current)
		if c.Current == lib.TaskStatusCompleted {
			close(done)
		}
	})

	if err := m.Refresh(ctx); err != nil {
		panic(err)
	}
	if err := m.Start(ctx); err != nil {
		panic(err)
	}
	<-done

	// Output:
	// "" -> "pending"
	// "pending" -> "running"
	// "running" -> "completed"
}

// This example shows how to handle SDK errors.
func Example_errorHandling() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "taskmon-example-errors-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		DBPath: filepath.Join(dir, "taskmon.db"),
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	// Try to get a non-existent task.
	_, err = client.GetTask(ctx, "does-not-exist")
	if errors.Is(err, lib.ErrNotFound) {
		fmt.Println("task not found (expected)")
	}

	// Try to create a task without work.
	_, err = client.CreateTask(ctx, lib.CreateTaskOpts{Name: "empty"})
	if errors.Is(err, lib.ErrNotValid) {
		fmt.Println("invalid task (expected)")
	}

	// Try to stop a pending task.
	task, _ := client.CreateTask(ctx, lib.CreateTaskOpts{Name: "pending", TotalUnits: 1})
	_, err = client.StopTask(ctx, task.ID)
	if errors.Is(err, lib.ErrNotAllowed) {
		fmt.Println("command not allowed (expected)")
	}

	// Output:
	// task not found (expected)
	// invalid task (expected)
	// command not allowed (expected)
}
