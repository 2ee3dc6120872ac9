package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskmon/internal/app/stop"
)

type StopCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	format string
}

// NewStopCommand returns the stop command.
func NewStopCommand(rootCmd *RootCommand, app *kingpin.Application) *StopCommand {
	c := &StopCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("stop", "Stop a running task, it keeps its progress and can be started again.")
	c.Cmd.Arg("id", "Task ID.").Required().StringVar(&c.taskID)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c StopCommand) Name() string { return c.Cmd.FullCommand() }

func (c StopCommand) Run(ctx context.Context) error {
	taskSvc, repo, err := c.rootCmd.taskService(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	monitors, err := c.rootCmd.engineFactory(ctx, taskSvc)
	if err != nil {
		return err
	}

	svc, err := stop.NewService(stop.ServiceConfig{
		Monitors: monitors,
		Logger:   c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	view, err := svc.Run(ctx, stop.Request{TaskID: c.taskID})
	if err != nil {
		return fmt.Errorf("could not stop task: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintStatus(view); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}
