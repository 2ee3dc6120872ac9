package lib

import (
	"context"
	"fmt"

	"github.com/slok/taskmon/internal/app/create"
	"github.com/slok/taskmon/internal/app/list"
	"github.com/slok/taskmon/internal/app/restart"
	"github.com/slok/taskmon/internal/app/start"
	"github.com/slok/taskmon/internal/app/status"
	"github.com/slok/taskmon/internal/app/stop"
	"github.com/slok/taskmon/internal/app/watch"
	"github.com/slok/taskmon/internal/monitor"
)

// CreateTask creates a new task, pending unless opts.Start is set.
func (c *Client) CreateTask(ctx context.Context, opts CreateTaskOpts) (*TaskView, error) {
	svc, err := create.NewService(create.ServiceConfig{
		Creator:  c.svc,
		Monitors: c.monitors,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	view, err := svc.Run(ctx, create.Request{
		Name:         opts.Name,
		TotalUnits:   opts.TotalUnits,
		UnitDuration: opts.UnitDuration,
		FailAtUnit:   opts.FailAtUnit,
		Start:        opts.Start,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return viewResult(view), nil
}

// GetTask returns the current state of a task.
//
// Returns [ErrNotFound] if the task does not exist.
func (c *Client) GetTask(ctx context.Context, taskID string) (*TaskView, error) {
	svc, err := status.NewService(status.ServiceConfig{
		Monitors: c.monitors,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	view, err := svc.Run(ctx, status.Request{TaskID: taskID})
	if err != nil {
		return nil, mapError(err)
	}

	return viewResult(view), nil
}

// ListTasks returns all the tasks, newest first.
// Pass nil opts to list all of them.
func (c *Client) ListTasks(ctx context.Context, opts *ListTasksOpts) ([]Task, error) {
	svc, err := list.NewService(list.ServiceConfig{
		Lister: c.svc,
		Logger: c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	tasks, err := svc.Run(ctx, list.Request{Status: toInternalStatusFilter(opts)})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalTaskList(tasks), nil
}

// StartTask starts a pending task.
//
// Returns [ErrNotAllowed] if the task is not pending.
func (c *Client) StartTask(ctx context.Context, taskID string) (*TaskView, error) {
	svc, err := start.NewService(start.ServiceConfig{
		Monitors: c.monitors,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	view, err := svc.Run(ctx, start.Request{TaskID: taskID})
	if err != nil {
		return nil, mapError(err)
	}

	return viewResult(view), nil
}

// StopTask stops a running task, it goes back to pending keeping its progress.
//
// Returns [ErrNotAllowed] if the task is not running.
func (c *Client) StopTask(ctx context.Context, taskID string) (*TaskView, error) {
	svc, err := stop.NewService(stop.ServiceConfig{
		Monitors: c.monitors,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	view, err := svc.Run(ctx, stop.Request{TaskID: taskID})
	if err != nil {
		return nil, mapError(err)
	}

	return viewResult(view), nil
}

// RestartTask restarts a finished task as a new task and returns the new task.
// When startNow is true the new task is started right away.
//
// Returns [ErrNotAllowed] if the task is not completed or failed.
func (c *Client) RestartTask(ctx context.Context, taskID string, startNow bool) (*TaskView, error) {
	svc, err := restart.NewService(restart.ServiceConfig{
		Monitors: c.monitors,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	view, err := svc.Run(ctx, restart.Request{TaskID: taskID, Start: startNow})
	if err != nil {
		return nil, mapError(err)
	}

	return viewResult(view), nil
}

// WatchTask polls a task while it's running and returns its final state once
// it's not running anymore. A task that is not running returns right away.
// Pass nil opts for defaults.
//
// Cancelling ctx stops the watch, returning the last known state and the context error.
func (c *Client) WatchTask(ctx context.Context, taskID string, opts *WatchTaskOpts) (*TaskView, error) {
	svc, err := watch.NewService(watch.ServiceConfig{
		Monitors: c.monitors,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := watch.Request{TaskID: taskID}
	if opts != nil {
		req.Start = opts.Start
		if opts.OnUpdate != nil {
			onUpdate := opts.OnUpdate
			req.OnUpdate = func(v monitor.View) { onUpdate(fromInternalView(v)) }
		}
	}

	view, err := svc.Run(ctx, req)
	if err != nil {
		if view.Snapshot() != nil {
			return viewResult(view), mapError(err)
		}
		return nil, mapError(err)
	}

	return viewResult(view), nil
}

func viewResult(v monitor.View) *TaskView {
	tv := fromInternalView(v)
	return &tv
}
