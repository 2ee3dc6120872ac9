package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/taskmon/internal/app/create"
)

type CreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	name       string
	units      int
	unitDur    time.Duration
	failAtUnit int
	start      bool
	format     string
}

// NewCreateCommand returns the create command.
func NewCreateCommand(rootCmd *RootCommand, app *kingpin.Application) *CreateCommand {
	c := &CreateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("create", "Create a new task.")
	c.Cmd.Flag("name", "Name for the task.").Short('n').Required().StringVar(&c.name)
	c.Cmd.Flag("units", "Number of work units of the task.").Short('u').Default("10").IntVar(&c.units)
	c.Cmd.Flag("unit-duration", "Time each work unit takes.").Default("1s").DurationVar(&c.unitDur)
	c.Cmd.Flag("fail-at-unit", "Make the task fail when reaching this unit (0 disables).").Default("0").IntVar(&c.failAtUnit)
	c.Cmd.Flag("start", "Start the task after creating it.").BoolVar(&c.start)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c CreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c CreateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	taskSvc, repo, err := c.rootCmd.taskService(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	monitors, err := c.rootCmd.engineFactory(ctx, taskSvc)
	if err != nil {
		return err
	}

	svc, err := create.NewService(create.ServiceConfig{
		Creator:  taskSvc,
		Monitors: monitors,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	view, err := svc.Run(ctx, create.Request{
		Name:         c.name,
		TotalUnits:   c.units,
		UnitDuration: c.unitDur,
		FailAtUnit:   c.failAtUnit,
		Start:        c.start,
	})
	if err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintStatus(view); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}
