package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskmon/internal/app/restart"
)

type RestartCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	start  bool
	format string
}

// NewRestartCommand returns the restart command.
func NewRestartCommand(rootCmd *RootCommand, app *kingpin.Application) *RestartCommand {
	c := &RestartCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("restart", "Restart a completed or failed task as a new task.")
	c.Cmd.Arg("id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("start", "Start the new task right away.").BoolVar(&c.start)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c RestartCommand) Name() string { return c.Cmd.FullCommand() }

func (c RestartCommand) Run(ctx context.Context) error {
	taskSvc, repo, err := c.rootCmd.taskService(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	monitors, err := c.rootCmd.engineFactory(ctx, taskSvc)
	if err != nil {
		return err
	}

	svc, err := restart.NewService(restart.ServiceConfig{
		Monitors: monitors,
		Logger:   c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	view, err := svc.Run(ctx, restart.Request{TaskID: c.taskID, Start: c.start})
	if err != nil {
		return fmt.Errorf("could not restart task: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintStatus(view); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}
