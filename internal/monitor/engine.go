package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/slok/taskmon/internal/clock"
	"github.com/slok/taskmon/internal/log"
	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/task"
)

// DefaultInterval is the default poll interval.
const DefaultInterval = 2 * time.Second

// Command is a command sent to the task service.
type Command string

const (
	CommandStart   Command = "start"
	CommandStop    Command = "stop"
	CommandRestart Command = "restart"
)

// State is the client side state of the engine.
type State struct {
	// Snapshot is nil until the first successful fetch.
	Snapshot *model.TaskSnapshot
	// LastError is the last fetch or command failure, empty after the next success.
	LastError               string
	IsPolling               bool
	IsManualRefreshInFlight bool
	// CommandInFlight is empty when no command is running.
	CommandInFlight Command
}

// EngineConfig is the configuration for the engine.
type EngineConfig struct {
	TaskID  string
	Service task.Service
	Clock   clock.Clock
	// Interval is the poll interval while the task is running.
	Interval time.Duration
	// Backoff is used to delay the polls after consecutive failures, by default
	// the interval is kept.
	Backoff Backoff
	Logger  log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.TaskID == "" {
		return fmt.Errorf("task id is required")
	}
	if c.Service == nil {
		return fmt.Errorf("task service is required")
	}
	if c.Clock == nil {
		c.Clock = clock.Real
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval can't be negative")
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Backoff == nil {
		c.Backoff = FixedBackoff{Delay: c.Interval}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "monitor.Engine"})
	return nil
}

// Engine monitors a task of the task service. It keeps the last snapshot, polls
// while the task is running and sends commands to the service.
//
// All the methods are safe for concurrent use. Responses arriving after the
// engine has been disposed or pointed to another task are discarded.
type Engine struct {
	svc    task.Service
	clock  clock.Clock
	logger log.Logger
	store  *Store
	sched  *scheduler

	// tickCtx is used by the background polls and cancelled on dispose.
	tickCtx    context.Context
	tickCancel context.CancelFunc

	// applyMu serializes the checks of a response against the current target
	// with the store updates and the target changes.
	applyMu sync.Mutex
	// pending are the status changes not dispatched to subscribers yet, guarded by applyMu.
	pending []StatusChange

	mu              sync.Mutex
	target          string
	epoch           uint64
	disposed        bool
	commandInFlight Command
	refreshInFlight bool

	subsMu       sync.Mutex
	nextSubID    int
	statusSubs   []subscriber[StatusChange]
	snapshotSubs []subscriber[model.TaskSnapshot]
}

// NewEngine returns a new engine for a task. The engine doesn't fetch anything
// until RefreshNow or a command is called.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	tickCtx, tickCancel := context.WithCancel(context.Background())
	e := &Engine{
		svc:        cfg.Service,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		store:      NewStore(),
		tickCtx:    tickCtx,
		tickCancel: tickCancel,
		target:     cfg.TaskID,
	}
	e.sched = newScheduler(cfg.Clock, cfg.Interval, cfg.Backoff, e.pollTick, cfg.Logger)
	e.store.Subscribe(e.onStatusChange)

	return e, nil
}

// TaskID returns the task being monitored.
func (e *Engine) TaskID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

// State returns the current state of the engine.
func (e *Engine) State() State {
	e.mu.Lock()
	refreshInFlight := e.refreshInFlight
	cmd := e.commandInFlight
	e.mu.Unlock()

	return State{
		Snapshot:                e.store.Snapshot(),
		LastError:               e.store.LastError(),
		IsPolling:               e.sched.isArmed(),
		IsManualRefreshInFlight: refreshInFlight,
		CommandInFlight:         cmd,
	}
}

// View returns the derived view of the current snapshot.
func (e *Engine) View() View {
	e.mu.Lock()
	cmd := e.commandInFlight
	e.mu.Unlock()

	return NewView(e.store.Snapshot(), e.clock.Now(), cmd != "")
}

// OnStatusChange registers fn to be called every time the task status changes.
// fn is called outside the engine locks so it can call any engine method.
func (e *Engine) OnStatusChange(fn func(StatusChange)) (unsubscribe func()) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	e.nextSubID++
	id := e.nextSubID
	e.statusSubs = append(e.statusSubs, subscriber[StatusChange]{id: id, fn: fn})

	return func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		e.statusSubs = removeSubscriber(e.statusSubs, id)
	}
}

// OnSnapshot registers fn to be called every time a new snapshot is stored.
func (e *Engine) OnSnapshot(fn func(model.TaskSnapshot)) (unsubscribe func()) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	e.nextSubID++
	id := e.nextSubID
	e.snapshotSubs = append(e.snapshotSubs, subscriber[model.TaskSnapshot]{id: id, fn: fn})

	return func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		e.snapshotSubs = removeSubscriber(e.snapshotSubs, id)
	}
}

// Start starts a pending task and fetches its state, the polling begins once
// the task is observed running. A failure fetching the state after a successful
// start is only recorded in the state last error.
func (e *Engine) Start(ctx context.Context) error {
	target, epoch, err := e.beginCommand(CommandStart, canStart)
	if err != nil {
		return err
	}
	defer e.endCommand()

	e.logger.Debugf("Starting task %s", target)
	if err := e.svc.StartTask(ctx, target); err != nil {
		e.recordError(target, epoch, err)
		return fmt.Errorf("could not start task: %w", err)
	}

	if err := e.fetchAndApply(ctx, target, epoch, 0); err != nil {
		if errors.Is(err, ErrDisposed) {
			return err
		}
		e.logger.Warningf("Task %s started but its state could not be fetched: %v", target, err)
	}

	e.applyMu.Lock()
	if e.checkCurrent(target, epoch) == nil {
		if snap := e.store.Snapshot(); snap != nil && snap.Status == model.TaskStatusRunning {
			e.sched.arm()
		}
	}
	e.applyMu.Unlock()

	e.logger.Infof("Started task %s", target)
	return nil
}

// Stop stops a running task, polling is stopped regardless of the fetched state.
func (e *Engine) Stop(ctx context.Context) error {
	target, epoch, err := e.beginCommand(CommandStop, canStop)
	if err != nil {
		return err
	}
	defer e.endCommand()

	e.logger.Debugf("Stopping task %s", target)
	if err := e.svc.StopTask(ctx, target); err != nil {
		// The task is still active on the server, keep polling.
		e.recordError(target, epoch, err)
		return fmt.Errorf("could not stop task: %w", err)
	}

	e.applyMu.Lock()
	if e.checkCurrent(target, epoch) == nil {
		e.sched.disarm()
	}
	e.applyMu.Unlock()

	if err := e.fetchAndApply(ctx, target, epoch, 0); err != nil {
		if errors.Is(err, ErrDisposed) {
			return err
		}
		e.logger.Warningf("Task %s stopped but its state could not be fetched: %v", target, err)
	}

	e.logger.Infof("Stopped task %s", target)
	return nil
}

// Restart restarts a finished task and returns the ID of the new task. The
// current snapshot is not modified, use SetTarget to monitor the new task.
func (e *Engine) Restart(ctx context.Context) (string, error) {
	target, epoch, err := e.beginCommand(CommandRestart, canRestart)
	if err != nil {
		return "", err
	}
	defer e.endCommand()

	e.logger.Debugf("Restarting task %s", target)
	newID, err := e.svc.RestartTask(ctx, target)
	if err != nil {
		e.recordError(target, epoch, err)
		return "", fmt.Errorf("could not restart task: %w", err)
	}
	if newID == "" || newID == target {
		err := fmt.Errorf("restart of task %s returned an invalid new task id %q: %w", target, newID, model.ErrNotValid)
		e.recordError(target, epoch, err)
		return "", err
	}

	e.applyMu.Lock()
	if e.checkCurrent(target, epoch) == nil {
		e.store.ClearError()
	}
	e.applyMu.Unlock()

	e.logger.Infof("Restarted task %s as %s", target, newID)
	return newID, nil
}

// RefreshNow fetches the task state once. It returns ErrInFlight without
// fetching when another manual refresh is running. It doesn't arm or disarm
// the polling by itself.
func (e *Engine) RefreshNow(ctx context.Context) error {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return ErrDisposed
	}
	if e.refreshInFlight {
		e.mu.Unlock()
		return fmt.Errorf("could not refresh task: %w", ErrInFlight)
	}
	e.refreshInFlight = true
	target, epoch := e.target, e.epoch
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.refreshInFlight = false
		e.mu.Unlock()
	}()

	return e.fetchAndApply(ctx, target, epoch, 0)
}

// SetTarget points the engine to another task, normally the one returned
// by Restart. The state is reset and the responses for the old task discarded.
func (e *Engine) SetTarget(taskID string) error {
	if taskID == "" {
		return fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return ErrDisposed
	}
	if e.target == taskID {
		e.mu.Unlock()
		return nil
	}
	old := e.target
	e.target = taskID
	e.epoch++
	e.mu.Unlock()

	e.sched.disarm()
	e.store.Clear()
	e.logger.Debugf("Monitor target changed from task %s to %s", old, taskID)

	return nil
}

// Dispose stops the engine. Polling is cancelled and any response still in
// flight is discarded. Calling it more than once has no effect.
func (e *Engine) Dispose() {
	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	e.epoch++
	target := e.target
	e.mu.Unlock()

	e.sched.disarm()
	e.tickCancel()
	e.logger.Debugf("Monitor of task %s disposed", target)
}

// pollTick is the scheduler tick, its response is discarded if the scheduler
// has been disarmed (or armed again) while fetching.
func (e *Engine) pollTick(gen uint64) error {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return nil
	}
	target, epoch := e.target, e.epoch
	e.mu.Unlock()

	snap := e.store.Snapshot()
	if snap == nil || snap.Status != model.TaskStatusRunning {
		e.sched.disarm()
		return nil
	}

	err := e.fetchAndApply(e.tickCtx, target, epoch, gen)
	if err != nil && !errors.Is(err, ErrDisposed) && !errors.Is(err, ErrStaleSnapshot) {
		e.logger.Warningf("Could not poll task %s: %v", target, err)
		return err
	}

	return nil
}

// fetchAndApply fetches the snapshot of target and stores it if the engine is
// still monitoring the same target epoch. A non zero pollGen marks a scheduled
// poll, only applied while the scheduler is in that generation.
func (e *Engine) fetchAndApply(ctx context.Context, target string, epoch, pollGen uint64) error {
	snap, fetchErr := e.svc.FetchSnapshot(ctx, target)
	if fetchErr == nil && snap == nil {
		fetchErr = fmt.Errorf("empty snapshot for task %s", target)
	}

	e.applyMu.Lock()
	if err := e.checkCurrent(target, epoch); err != nil {
		e.applyMu.Unlock()
		e.logger.Debugf("Discarding response for task %s: %v", target, err)
		return err
	}

	if pollGen != 0 && !e.sched.isCurrent(pollGen) {
		e.applyMu.Unlock()
		e.logger.Debugf("Discarding poll response for task %s, polling changed while fetching", target)
		return fmt.Errorf("poll of task %s: %w", target, ErrStaleSnapshot)
	}

	if fetchErr != nil {
		e.store.RecordError(fetchErr.Error())
		e.applyMu.Unlock()
		return fmt.Errorf("could not fetch task snapshot: %w", fetchErr)
	}

	if snap.ID != target {
		e.applyMu.Unlock()
		e.logger.Warningf("Discarding snapshot of task %s while monitoring task %s", snap.ID, target)
		return fmt.Errorf("snapshot for task %s: %w", snap.ID, ErrStaleSnapshot)
	}

	applyErr := e.store.Apply(*snap)
	if applyErr != nil && !errors.Is(applyErr, ErrStaleSnapshot) {
		e.store.RecordError(applyErr.Error())
	}
	events := e.pending
	e.pending = nil
	e.applyMu.Unlock()

	switch {
	case errors.Is(applyErr, ErrStaleSnapshot):
		e.logger.Debugf("Ignoring stale snapshot of task %s (sequence %d)", target, snap.Sequence)
		return nil
	case applyErr != nil:
		return applyErr
	}

	e.dispatch(events, *snap)
	return nil
}

// onStatusChange is the store subscription, it runs while holding applyMu.
func (e *Engine) onStatusChange(ev StatusChange) {
	if ev.Current == model.TaskStatusRunning {
		e.sched.arm()
	} else {
		e.sched.disarm()
	}
	e.pending = append(e.pending, ev)
}

func (e *Engine) dispatch(events []StatusChange, snap model.TaskSnapshot) {
	e.subsMu.Lock()
	statusSubs := make([]subscriber[StatusChange], len(e.statusSubs))
	copy(statusSubs, e.statusSubs)
	snapshotSubs := make([]subscriber[model.TaskSnapshot], len(e.snapshotSubs))
	copy(snapshotSubs, e.snapshotSubs)
	e.subsMu.Unlock()

	for _, ev := range events {
		e.logger.Infof("Task %s status changed: %s -> %s", ev.TaskID, statusOrNone(ev.Previous), ev.Current)
		for _, sub := range statusSubs {
			sub.fn(ev)
		}
	}

	for _, sub := range snapshotSubs {
		sub.fn(snap.Copy())
	}
}

func (e *Engine) beginCommand(cmd Command, allowed func(*model.TaskSnapshot) bool) (target string, epoch uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return "", 0, ErrDisposed
	}
	if e.commandInFlight != "" {
		return "", 0, fmt.Errorf("cannot %s task %s while %s is in flight: %w", cmd, e.target, e.commandInFlight, ErrInFlight)
	}

	snap := e.store.Snapshot()
	if !allowed(snap) {
		status := model.TaskStatus("")
		if snap != nil {
			status = snap.Status
		}
		return "", 0, fmt.Errorf("cannot %s task %s in %s status: %w", cmd, e.target, statusOrNone(status), ErrNotAllowed)
	}

	e.commandInFlight = cmd
	return e.target, e.epoch, nil
}

func (e *Engine) endCommand() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commandInFlight = ""
}

// recordError records err as the last error if the command target is still current.
func (e *Engine) recordError(target string, epoch uint64, err error) {
	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	if e.checkCurrent(target, epoch) == nil {
		e.store.RecordError(err.Error())
	}
}

// checkCurrent must be called holding applyMu.
func (e *Engine) checkCurrent(target string, epoch uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return ErrDisposed
	}
	if e.epoch != epoch || e.target != target {
		return fmt.Errorf("task target changed: %w", ErrStaleSnapshot)
	}
	return nil
}

func statusOrNone(s model.TaskStatus) string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}
