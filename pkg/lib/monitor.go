package lib

import (
	"context"
	"fmt"

	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/monitor"
)

// Monitor keeps the state of one task up to date. It polls the task while it's
// running and runs the task commands, discarding responses of tasks it
// doesn't follow anymore.
//
// Create a Monitor with [Client.Monitor] and release it with [Monitor.Close].
// A Monitor is safe for concurrent use.
type Monitor struct {
	engine *monitor.Engine
}

// Monitor returns a new monitor following taskID. The monitor doesn't fetch the
// task until [Monitor.Refresh] or a command is called.
func (c *Client) Monitor(taskID string) (*Monitor, error) {
	e, err := c.monitors.NewEngine(taskID)
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create task monitor: %w", err))
	}

	return &Monitor{engine: e}, nil
}

// TaskID returns the ID of the followed task.
func (m *Monitor) TaskID() string { return m.engine.TaskID() }

// State returns the current monitor state.
func (m *Monitor) State() MonitorState { return fromInternalState(m.engine.State()) }

// View returns the derived view of the last known task snapshot.
func (m *Monitor) View() TaskView { return fromInternalView(m.engine.View()) }

// Refresh fetches the task right away.
//
// Returns [ErrInFlight] if another refresh is running.
func (m *Monitor) Refresh(ctx context.Context) error {
	return mapError(m.engine.RefreshNow(ctx))
}

// Start starts the task and begins polling it.
func (m *Monitor) Start(ctx context.Context) error {
	return mapError(m.engine.Start(ctx))
}

// Stop stops the task and stops polling it.
func (m *Monitor) Stop(ctx context.Context) error {
	return mapError(m.engine.Stop(ctx))
}

// Restart restarts the finished task and returns the new task ID. The monitor
// keeps following the old task, use [Monitor.Follow] to move to the new one.
func (m *Monitor) Restart(ctx context.Context) (string, error) {
	id, err := m.engine.Restart(ctx)
	if err != nil {
		return "", mapError(err)
	}
	return id, nil
}

// Follow moves the monitor to another task, the known state is dropped.
func (m *Monitor) Follow(taskID string) error {
	return mapError(m.engine.SetTarget(taskID))
}

// OnStatusChange registers fn to be called on every status change of the
// followed task. The returned function unregisters it.
func (m *Monitor) OnStatusChange(fn func(StatusChange)) (unsubscribe func()) {
	return m.engine.OnStatusChange(func(c monitor.StatusChange) {
		fn(StatusChange{
			TaskID:   c.TaskID,
			Previous: TaskStatus(c.Previous),
			Current:  TaskStatus(c.Current),
		})
	})
}

// OnUpdate registers fn to be called with the view of every new snapshot of the
// followed task. The returned function unregisters it.
func (m *Monitor) OnUpdate(fn func(TaskView)) (unsubscribe func()) {
	return m.engine.OnSnapshot(func(model.TaskSnapshot) {
		fn(fromInternalView(m.engine.View()))
	})
}

// Close stops the monitor, in flight responses are discarded. It's safe to call
// it more than once.
func (m *Monitor) Close() {
	m.engine.Dispose()
}
