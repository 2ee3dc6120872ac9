package lib

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/slok/taskmon/internal/conventions"
	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/monitor"
	"github.com/slok/taskmon/internal/storage/sqlite"
	"github.com/slok/taskmon/internal/task/local"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. At minimum, an empty
// Config{} will use ~/.taskmon/taskmon.db for storage and poll every 2s.
type Config struct {
	// DBPath is the SQLite database path.
	// Default: ~/.taskmon/taskmon.db.
	DBPath string

	// DataDir is the base directory for taskmon data.
	// Default: ~/.taskmon.
	DataDir string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger

	// PollInterval is the time between polls of a running task.
	// Default: 2s.
	PollInterval time.Duration

	// Backoff configures how the poll interval grows after consecutive poll failures.
	// Default: nil (fixed interval).
	Backoff *BackoffConfig
}

func (c *Config) defaults() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DataDir = conventions.DataDir(home)
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBPath(c.DataDir)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.PollInterval < 0 {
		return fmt.Errorf("poll interval can't be negative: %w", ErrNotValid)
	}

	return nil
}

// Client is the main SDK entry point for managing tasks programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	svc      *local.Service
	monitors monitor.EngineFactory
	logger   log.Logger
	closeFn  func() error
}

// New creates a new SDK client backed by a SQLite database.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	monitorCfg := toInternalMonitorConfig(cfg)
	interval := monitorCfg.Interval
	if interval == 0 {
		interval = monitor.DefaultInterval
	}
	if _, err := monitor.NewBackoff(interval, monitorCfg.Backoff); err != nil {
		return nil, mapError(fmt.Errorf("invalid config: %w", err))
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	svc, err := local.NewService(local.ServiceConfig{
		Repository: repo,
		Logger:     cfg.Logger,
	})
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("could not create task service: %w", err)
	}

	return &Client{
		svc: svc,
		monitors: monitor.EngineFactory{
			Service: svc,
			Config:  monitorCfg,
			Logger:  cfg.Logger,
		},
		logger:  cfg.Logger,
		closeFn: repo.Close,
	}, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

func toInternalMonitorConfig(cfg Config) model.MonitorConfig {
	mc := model.MonitorConfig{Interval: cfg.PollInterval}
	if cfg.Backoff != nil {
		mc.Backoff = model.BackoffConfig{
			Type:       string(cfg.Backoff.Type),
			Multiplier: cfg.Backoff.Multiplier,
			Max:        cfg.Backoff.Max,
		}
	}
	return mc
}
