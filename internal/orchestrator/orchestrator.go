package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/catalyst/api"
	"github.com/programme-lv/catalyst/internal/config"
	"github.com/programme-lv/catalyst/internal/platform"
	"github.com/programme-lv/catalyst/internal/runner"
	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultPollInterval bounds how long a single readiness round blocks, and
// therefore how late a deadline or cancellation is noticed.
const DefaultPollInterval = 50 * time.Millisecond

// ErrDeadlineExceeded is the reason given for testcases still pending when
// the overall deadline passes.
var ErrDeadlineExceeded = errors.New("overall deadline exceeded")

type Options struct {
	// Deadline for the whole run; zero means none
	Deadline     time.Duration
	PollInterval time.Duration
	Launcher     Launcher
	// Runner options passed to every runner; TestsDir comes from the
	// configuration
	Runner runner.Options
	Logger *slog.Logger
}

// Orchestrator runs every testcase of a configuration concurrently and
// collects one result per testcase in list order.
type Orchestrator struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options) *Orchestrator {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Launcher == nil {
		opts.Launcher = &InProcessLauncher{Logger: log}
	}
	return &Orchestrator{opts: opts, log: log}
}

// run is the state of one Orchestrator.Run call.
type run struct {
	log       *slog.Logger
	testcases []config.Testcase
	channels  []*platform.Pipe
	handles   []Handle
	// runners that have not finished yet
	live    *xsync.MapOf[int, Handle]
	results []api.Message
	settled []bool
}

// Run executes the testcases of cfg and returns their results in list order.
// An error means the run as a whole failed: a result channel could not be
// created, a result did not fit into a message, or waiting for readiness
// failed.
func (o *Orchestrator) Run(ctx context.Context, cfg config.Configuration) (results []api.Message, err error) {
	if o.opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, o.opts.Deadline, ErrDeadlineExceeded)
		defer cancel()
	}

	n := len(cfg.Testcases)
	r := &run{
		log:       o.log,
		testcases: cfg.Testcases,
		channels:  make([]*platform.Pipe, 0, n),
		handles:   make([]Handle, n),
		live:      xsync.NewMapOf[int, Handle](),
		results:   make([]api.Message, n),
		settled:   make([]bool, n),
	}
	defer func() {
		if err != nil {
			r.killAll()
		}
		r.release()
	}()

	opts := o.opts.Runner
	opts.TestsDir = cfg.TestsDir
	for i, tc := range cfg.Testcases {
		ch, err := platform.NewPipe()
		if err != nil {
			return nil, fmt.Errorf("failed to create result channel for testcase %q: %w", tc.Name, err)
		}
		r.channels = append(r.channels, ch)

		h, err := o.opts.Launcher.Launch(ctx, runner.NewRequest(tc.Clone(), opts), ch.WriteEnd)
		if err != nil {
			o.log.Warn("failed to launch runner", "testcase", tc.Name, "error", err)
			writeErr := api.WriteMessage(ch.WriteEnd, api.NewSpawnError(tc.Name, tc.Path, err.Error()))
			_ = ch.WriteEnd.Close()
			if writeErr != nil {
				return nil, fmt.Errorf("testcase %q: %w", tc.Name, writeErr)
			}
			continue
		}
		r.handles[i] = h
		r.live.Store(i, h)
		go r.watch(i, h)
	}
	o.log.Debug("launched runners", "testcases", n)

	if err := r.await(ctx, o.opts.PollInterval); err != nil {
		return nil, err
	}
	if err := r.drain(); err != nil {
		return nil, err
	}
	return r.results, nil
}

// watch reaps a runner in the background.
func (r *run) watch(i int, h Handle) {
	if err := h.Wait(); err != nil {
		r.log.Debug("runner finished with error", "testcase", r.testcases[i].Name, "error", err)
	}
	r.live.Delete(i)
}

// await blocks until every result channel is ready or the context ends. The
// pending set only ever shrinks.
func (r *run) await(ctx context.Context, interval time.Duration) error {
	pending := mapset.NewThreadUnsafeSet[int]()
	for i := range r.channels {
		pending.Add(i)
	}
	fds := make([]int, len(r.channels))
	for i, ch := range r.channels {
		fds[i] = int(ch.ReadEnd.Fd())
	}

	for pending.Cardinality() > 0 {
		idx := pending.ToSlice()
		slices.Sort(idx)
		polled := make([]int, len(idx))
		for k, i := range idx {
			polled[k] = fds[i]
		}

		ready, err := platform.PollReadable(polled, interval)
		if errors.Is(err, platform.ErrInterrupted) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to wait for results: %w", err)
		}
		for _, k := range ready {
			pending.Remove(idx[k])
		}

		// channels that became ready in the last round are still drained
		if pending.Cardinality() > 0 && ctx.Err() != nil {
			r.abandon(pending, context.Cause(ctx))
			return nil
		}
	}
	return nil
}

// abandon kills the runners of pending channels and settles their results.
func (r *run) abandon(pending mapset.Set[int], cause error) {
	pending.Each(func(i int) bool {
		tc := r.testcases[i]
		if h, ok := r.live.Load(i); ok {
			if err := h.Kill(); err != nil {
				r.log.Warn("failed to kill runner", "testcase", tc.Name, "error", err)
			}
		}
		r.log.Warn("testcase did not report in time", "testcase", tc.Name, "reason", cause)
		r.results[i] = api.NewUnreported(tc.Name, tc.Path, cause.Error())
		r.settled[i] = true
		return false
	})
}

// drain reads one message per channel in list order.
func (r *run) drain() error {
	for i, ch := range r.channels {
		if r.settled[i] {
			continue
		}
		tc := r.testcases[i]

		msg, err := api.Decode(ch.ReadEnd)
		if err == nil {
			r.results[i] = msg
			continue
		}
		if errors.Is(err, api.ErrMessageTooLarge) {
			return fmt.Errorf("testcase %q: %w", tc.Name, err)
		}
		if !errors.Is(err, api.ErrNoMessage) {
			r.log.Warn("malformed result message", "testcase", tc.Name, "error", err)
			r.results[i] = api.NewUnreported(tc.Name, tc.Path, err.Error())
			continue
		}

		reason := "runner exited without reporting"
		if h := r.handles[i]; h != nil {
			if werr := h.Wait(); werr != nil {
				if errors.Is(werr, api.ErrMessageTooLarge) {
					return fmt.Errorf("testcase %q: %w", tc.Name, werr)
				}
				reason = werr.Error()
			}
		}
		r.log.Warn("runner did not report a result", "testcase", tc.Name, "reason", reason)
		r.results[i] = api.NewUnreported(tc.Name, tc.Path, reason)
	}
	return nil
}

func (r *run) killAll() {
	r.live.Range(func(i int, h Handle) bool {
		_ = h.Kill()
		return true
	})
}

// release closes every read end. Runners are reaped by their watchers.
func (r *run) release() {
	for _, ch := range r.channels {
		_ = ch.ReadEnd.Close()
	}
}
