package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskmon/internal/app/watch"
	"github.com/slok/taskmon/internal/monitor"
	"github.com/slok/taskmon/internal/printer"
)

type WatchCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	start  bool
	format string
}

// NewWatchCommand returns the watch command.
func NewWatchCommand(rootCmd *RootCommand, app *kingpin.Application) *WatchCommand {
	c := &WatchCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("watch", "Follow the progress of a task until it stops running.")
	c.Cmd.Arg("id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("start", "Start the task first if it's pending.").BoolVar(&c.start)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c WatchCommand) Name() string { return c.Cmd.FullCommand() }

func (c WatchCommand) Run(ctx context.Context) error {
	taskSvc, repo, err := c.rootCmd.taskService(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	monitors, err := c.rootCmd.engineFactory(ctx, taskSvc)
	if err != nil {
		return err
	}

	svc, err := watch.NewService(watch.ServiceConfig{
		Monitors: monitors,
		Logger:   c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// The progress line is only drawn on table output, JSON output prints the final state.
	var onUpdate func(monitor.View)
	var progress *printer.ProgressLine
	if c.format == formatTable {
		progress = printer.NewProgressLine(c.rootCmd.Stderr, c.rootCmd.NoColor)
		onUpdate = progress.Update
	}

	view, err := svc.Run(ctx, watch.Request{
		TaskID:   c.taskID,
		Start:    c.start,
		OnUpdate: onUpdate,
	})
	if progress != nil {
		progress.Finish()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("could not watch task: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintStatus(view); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}
