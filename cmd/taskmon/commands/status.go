package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskmon/internal/app/status"
)

type StatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	format string
}

// NewStatusCommand returns the status command.
func NewStatusCommand(rootCmd *RootCommand, app *kingpin.Application) *StatusCommand {
	c := &StatusCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("status", "Get detailed status of a task.")
	c.Cmd.Arg("id", "Task ID.").Required().StringVar(&c.taskID)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c StatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatusCommand) Run(ctx context.Context) error {
	taskSvc, repo, err := c.rootCmd.taskService(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	monitors, err := c.rootCmd.engineFactory(ctx, taskSvc)
	if err != nil {
		return err
	}

	svc, err := status.NewService(status.ServiceConfig{
		Monitors: monitors,
		Logger:   c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	view, err := svc.Run(ctx, status.Request{TaskID: c.taskID})
	if err != nil {
		return fmt.Errorf("could not get task status: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintStatus(view); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}

	return nil
}
