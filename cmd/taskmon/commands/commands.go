package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/taskmon/internal/conventions"
	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/monitor"
	"github.com/slok/taskmon/internal/printer"
	storageio "github.com/slok/taskmon/internal/storage/io"
	"github.com/slok/taskmon/internal/storage/sqlite"
	"github.com/slok/taskmon/internal/task/local"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DBPath     string
	ConfigPath string
	Interval   time.Duration

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger and output color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDBPath := conventions.DBPath(conventions.DataDir(homedir.HomeDir()))
	app.Flag("db-path", "Path to the SQLite database file.").Envar("TASKMON_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)
	app.Flag("config", "Path to a monitor configuration YAML file.").Short('c').StringVar(&c.ConfigPath)
	app.Flag("interval", "Poll interval while a task is running, overrides the config file.").DurationVar(&c.Interval)

	return c
}

// taskService opens the task database and returns the local task service over it.
// The returned repository must be closed by the caller.
func (c *RootCommand) taskService(ctx context.Context) (*local.Service, *sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.DBPath,
		Logger: c.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create repository: %w", err)
	}

	svc, err := local.NewService(local.ServiceConfig{
		Repository: repo,
		Logger:     c.Logger,
	})
	if err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("could not create task service: %w", err)
	}

	return svc, repo, nil
}

// monitorConfig loads the monitor configuration file, if any, and applies the flag overrides.
func (c *RootCommand) monitorConfig(ctx context.Context) (model.MonitorConfig, error) {
	var cfg model.MonitorConfig
	if c.ConfigPath != "" {
		configPath, err := filepath.Abs(c.ConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("could not resolve monitor config path: %w", err)
		}

		configRepo := storageio.NewConfigYAMLRepository(os.DirFS("/"))
		cfg, err = configRepo.GetMonitorConfig(ctx, configPath[1:])
		if err != nil {
			return cfg, fmt.Errorf("could not load monitor config: %w", err)
		}
	}

	if c.Interval < 0 {
		return cfg, fmt.Errorf("--interval can't be negative")
	}
	if c.Interval > 0 {
		cfg.Interval = c.Interval
	}

	return cfg, nil
}

// engineFactory returns the factory of the task monitors used by the commands.
func (c *RootCommand) engineFactory(ctx context.Context, svc *local.Service) (monitor.EngineFactory, error) {
	cfg, err := c.monitorConfig(ctx)
	if err != nil {
		return monitor.EngineFactory{}, err
	}

	return monitor.EngineFactory{
		Service: svc,
		Config:  cfg,
		Logger:  c.Logger,
	}, nil
}

func (c *RootCommand) printer(format string) printer.Printer {
	switch format {
	case formatJSON:
		return printer.NewJSONPrinter(c.Stdout)
	default:
		return printer.NewTablePrinter(c.Stdout, c.NoColor)
	}
}

func formatFlag(cmd *kingpin.CmdClause, format *string) {
	cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(format, formatTable, formatJSON)
}
