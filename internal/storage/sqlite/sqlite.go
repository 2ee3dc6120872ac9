package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.TaskRepository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository, the schema is migrated on creation.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

const selectColumns = `
	id, name, status,
	completed_units, total_units, error_count,
	unit_duration, fail_at_unit, sequence, restarted_from,
	created_at, resumed_at, completed_at
`

// CreateTask stores a new task.
func (r *Repository) CreateTask(ctx context.Context, t model.TaskRecord) error {
	query := `
		INSERT INTO tasks (
			id, name, status,
			completed_units, total_units, error_count,
			unit_duration, fail_at_unit, sequence, restarted_from,
			created_at, resumed_at, completed_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.Name,
		t.Status,
		t.CompletedUnits,
		t.TotalUnits,
		t.ErrorCount,
		int64(t.UnitDuration),
		t.FailAtUnit,
		t.Sequence,
		t.RestartedFrom,
		t.CreatedAt.UnixNano(),
		nullableTime(t.ResumedAt),
		nullableTime(t.CompletedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: tasks.") {
			return fmt.Errorf("task already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert task: %w", err)
	}

	r.logger.Debugf("Created task in repository: %s", t.ID)
	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.TaskRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM tasks WHERE id = ?`

	t, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}

	return &t, nil
}

// ListTasks returns all tasks, newest first.
func (r *Repository) ListTasks(ctx context.Context) ([]model.TaskRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM tasks ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.TaskRecord
	for rows.Next() {
		t, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

// UpdateTask updates an existing task.
func (r *Repository) UpdateTask(ctx context.Context, t model.TaskRecord) error {
	query := `
		UPDATE tasks
		SET
			name = ?,
			status = ?,
			completed_units = ?,
			total_units = ?,
			error_count = ?,
			unit_duration = ?,
			fail_at_unit = ?,
			sequence = ?,
			restarted_from = ?,
			resumed_at = ?,
			completed_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		t.Name,
		t.Status,
		t.CompletedUnits,
		t.TotalUnits,
		t.ErrorCount,
		int64(t.UnitDuration),
		t.FailAtUnit,
		t.Sequence,
		t.RestartedFrom,
		nullableTime(t.ResumedAt),
		nullableTime(t.CompletedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task %s: %w", t.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated task in repository: %s", t.ID)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanRow(s scanner) (model.TaskRecord, error) {
	var t model.TaskRecord
	var status string
	var unitDuration int64
	var createdAt, resumedAt, completedAt sql.NullInt64

	err := s.Scan(
		&t.ID,
		&t.Name,
		&status,
		&t.CompletedUnits,
		&t.TotalUnits,
		&t.ErrorCount,
		&unitDuration,
		&t.FailAtUnit,
		&t.Sequence,
		&t.RestartedFrom,
		&createdAt,
		&resumedAt,
		&completedAt,
	)
	if err != nil {
		return model.TaskRecord{}, err
	}

	// Status is not validated here, the consumers decide what to do with unknown ones.
	t.Status = model.TaskStatus(status)
	t.UnitDuration = time.Duration(unitDuration)

	if !createdAt.Valid {
		return model.TaskRecord{}, fmt.Errorf("created_at is required")
	}
	t.CreatedAt = timeFromUnixNano(createdAt.Int64)
	if resumedAt.Valid {
		v := timeFromUnixNano(resumedAt.Int64)
		t.ResumedAt = &v
	}
	if completedAt.Valid {
		v := timeFromUnixNano(completedAt.Int64)
		t.CompletedAt = &v
	}

	return t, nil
}

func nullableTime(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.UnixNano()
	return &v
}

func timeFromUnixNano(n int64) time.Time { return time.Unix(0, n).UTC() }
