package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskmon/internal/app/start"
)

type StartCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	format string
}

// NewStartCommand returns the start command.
func NewStartCommand(rootCmd *RootCommand, app *kingpin.Application) *StartCommand {
	c := &StartCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("start", "Start a pending task.")
	c.Cmd.Arg("id", "Task ID.").Required().StringVar(&c.taskID)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c StartCommand) Name() string { return c.Cmd.FullCommand() }

func (c StartCommand) Run(ctx context.Context) error {
	taskSvc, repo, err := c.rootCmd.taskService(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	monitors, err := c.rootCmd.engineFactory(ctx, taskSvc)
	if err != nil {
		return err
	}

	svc, err := start.NewService(start.ServiceConfig{
		Monitors: monitors,
		Logger:   c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	view, err := svc.Run(ctx, start.Request{TaskID: c.taskID})
	if err != nil {
		return fmt.Errorf("could not start task: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintStatus(view); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}
