package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/cxn/internal/domain"
)

var ErrInvalidInterval = errors.New("watch interval must be positive")

// Runner checks a batch of hosts. *Scheduler implements it.
type Runner interface {
	Run(ctx context.Context, hosts []domain.HostSpec) []domain.HostResult
}

// Presenter receives each cycle. BeginCycle is called before any host is
// checked, Present once all results are in.
type Presenter interface {
	BeginCycle(at time.Time, interval time.Duration)
	Present(results []domain.HostResult, tally domain.Tally, elapsed time.Duration) error
}

// Clock abstracts time so the loop can be driven by tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type State int32

const (
	StateIdle State = iota
	StateRunning
	StateSleeping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Remaining is how long to sleep after a cycle so that cycles start one
// interval apart. A cycle that overran starts the next one immediately.
func Remaining(interval, elapsed time.Duration) time.Duration {
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}

// Watcher repeats a check cycle at a fixed cadence measured from each cycle's
// start until its context is cancelled.
type Watcher struct {
	Logger    *zap.Logger
	Runner    Runner
	Presenter Presenter
	Hosts     []domain.HostSpec
	Interval  time.Duration
	Clock     Clock

	state  atomic.Int32
	cycles atomic.Int64
}

func NewWatcher(
	logger *zap.Logger,
	runner Runner,
	presenter Presenter,
	hosts []domain.HostSpec,
	interval time.Duration,
) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		Logger:    logger,
		Runner:    runner,
		Presenter: presenter,
		Hosts:     hosts,
		Interval:  interval,
		Clock:     SystemClock,
	}
}

func (w *Watcher) State() State { return State(w.state.Load()) }

// Cycles reports how many cycles have completed.
func (w *Watcher) Cycles() int64 { return w.cycles.Load() }

// Run blocks until ctx is cancelled. Cancellation is observed before a cycle
// starts and while sleeping; a cycle in progress always completes and is
// presented.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Interval <= 0 {
		return ErrInvalidInterval
	}
	clock := w.Clock
	if clock == nil {
		clock = SystemClock
	}
	defer w.state.Store(int32(StateStopped))

	w.Logger.Info("watch_started",
		zap.Duration("interval", w.Interval),
		zap.Int("hosts", len(w.Hosts)),
	)
	for {
		if ctx.Err() != nil {
			w.Logger.Info("watch_stopped", zap.Int64("cycles", w.Cycles()))
			return nil
		}

		w.state.Store(int32(StateRunning))
		start := clock.Now()
		RunCycle(ctx, w.Logger, w.Runner, w.Presenter, w.Hosts, start, w.Interval, clock)
		w.cycles.Add(1)

		remaining := Remaining(w.Interval, clock.Now().Sub(start))
		w.state.Store(int32(StateSleeping))
		select {
		case <-ctx.Done():
		case <-clock.After(remaining):
		}
	}
}

// RunCycle runs and presents one batch and returns its tally. interval is
// zero outside watch mode.
func RunCycle(
	ctx context.Context,
	logger *zap.Logger,
	runner Runner,
	presenter Presenter,
	hosts []domain.HostSpec,
	start time.Time,
	interval time.Duration,
	clock Clock,
) domain.Tally {
	cycleID := uuid.NewString()
	presenter.BeginCycle(start, interval)

	results := runner.Run(ctx, hosts)
	elapsed := clock.Now().Sub(start)
	tally := domain.Summarize(hosts, results)

	if err := presenter.Present(results, tally, elapsed); err != nil {
		logger.Warn("present_error", zap.String("cycle_id", cycleID), zap.Error(err))
	}
	logger.Info("check_cycle_done",
		zap.String("cycle_id", cycleID),
		zap.Int("checked", tally.Checked),
		zap.Int("ok", tally.Succeeded),
		zap.Int("failed", tally.Failed()),
		zap.Duration("elapsed", elapsed),
	)
	return tally
}
