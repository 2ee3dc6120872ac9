package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/taskmon/cmd/taskmon/commands"
	"github.com/slok/taskmon/internal/log"
	loglogrus "github.com/slok/taskmon/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("taskmon", "Asynchronous task progress monitor.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Every task command registers its flags on the app.
	cmds := map[string]commands.Command{}
	for _, cmd := range []commands.Command{
		commands.NewCreateCommand(rootCmd, app),
		commands.NewListCommand(rootCmd, app),
		commands.NewStatusCommand(rootCmd, app),
		commands.NewStartCommand(rootCmd, app),
		commands.NewStopCommand(rootCmd, app),
		commands.NewRestartCommand(rootCmd, app),
		commands.NewWatchCommand(rootCmd, app),
	} {
		cmds[cmd.Name()] = cmd
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Printed output and the watch progress line should not be mixed with the
	// logs unless asked with --debug.
	if !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(*rootCmd, cmdName)

	var g run.Group

	// A termination signal stops the running task command, a watch prints the
	// last known task state. The task itself keeps running on the server.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received, stopping %q command", cmdName)
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Task command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				if err := cmds[cmdName].Run(ctx); err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the logger of a taskmon command. Logs always go to stderr,
// stdout is kept for the task tables and JSON.
func getLogger(config commands.RootCommand, cmdName string) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr
	if config.Debug {
		logrusLog.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeJSON:
		logrusLog.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrusLog.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	}

	logger := loglogrus.NewLogrus(logrus.NewEntry(logrusLog)).WithValues(log.Kv{
		"app":     "taskmon",
		"cmd":     cmdName,
		"version": Version,
		"db":      config.DBPath,
	})
	logger.Debugf("Debug level is enabled, polling every %s", pollInterval(config))

	return logger
}

// pollInterval is the interval shown in the logs, the config file can still change it.
func pollInterval(config commands.RootCommand) string {
	if config.Interval > 0 {
		return config.Interval.String()
	}
	return "default interval"
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
