// Package lib provides a Go SDK for creating and monitoring taskmon tasks programmatically.
//
// It exposes the same operations as the taskmon CLI (create, list, status, start,
// stop, restart, watch) plus a [Monitor] that keeps the state of a single task
// up to date by polling it while it's running.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	task, err := client.CreateTask(ctx, lib.CreateTaskOpts{
//	    Name:       "reindex",
//	    TotalUnits: 20,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	final, err := client.WatchTask(ctx, task.ID, &lib.WatchTaskOpts{Start: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(final.StatusText)
//
// # Monitors
//
// A [Monitor] follows a single task. It polls the task at the configured interval
// while it's running and stops polling once the task is not running anymore.
// Register callbacks to be notified of status changes:
//
//	m, _ := client.Monitor(task.ID)
//	defer m.Close()
//
//	m.OnStatusChange(func(c lib.StatusChange) {
//	    fmt.Printf("%s: %s -> %s\n", c.TaskID, c.Previous, c.Current)
//	})
//
//	_ = m.Refresh(ctx)
//	_ = m.Start(ctx)
//
// Restarting a finished task creates a new task, use [Monitor.Follow] to move
// the monitor to it:
//
//	newID, _ := m.Restart(ctx)
//	_ = m.Follow(newID)
//
// # Polling
//
// The poll interval defaults to 2s and can be set with [Config.PollInterval].
// Consecutive poll failures can grow the interval with [Config.Backoff].
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: Task does not exist.
//   - [ErrNotValid]: Invalid input (e.g. a task without units).
//   - [ErrInvalidState]: The task server rejected the operation in the current task state.
//   - [ErrNotAllowed]: The monitor rejected a command for the known task state, no call was made.
//   - [ErrInFlight]: The same kind of operation is already running on the monitor.
//   - [ErrClosed]: The monitor has been closed.
//
// # Testing
//
// Use a temporary database path to write tests without touching the user data:
//
//	client, _ := lib.New(ctx, lib.Config{
//	    DBPath: filepath.Join(t.TempDir(), "test.db"),
//	})
//	defer client.Close()
//
// # Thread Safety
//
// A [Client] and a [Monitor] are safe for concurrent use from multiple goroutines.
package lib
