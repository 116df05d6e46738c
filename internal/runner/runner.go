package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/programme-lv/catalyst/api"
	"github.com/programme-lv/catalyst/internal/config"
	"github.com/programme-lv/catalyst/internal/platform"
)

const (
	// CaptureLimit is how many bytes of a test binary's combined output are
	// kept for the diagnostic of an aborted testcase.
	CaptureLimit = 2048

	// CaptureGrace bounds the wait for captured output after an abnormal
	// termination.
	CaptureGrace = 500 * time.Millisecond
)

type Options struct {
	// TestsDir is joined with a testcase's path to locate its binary
	TestsDir     string
	CaptureLimit int
	CaptureGrace time.Duration
	Logger       *slog.Logger
}

// Runner executes one testcase at a time and reports the outcome as a single
// result message.
type Runner struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options) *Runner {
	if opts.CaptureLimit <= 0 {
		opts.CaptureLimit = CaptureLimit
	}
	if opts.CaptureGrace <= 0 {
		opts.CaptureGrace = CaptureGrace
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{opts: opts, log: log}
}

// Execute runs tc and writes exactly one result frame to w. The returned
// error is non-nil only when the frame could not be written (including
// api.ErrMessageTooLarge) or when ctx ended the run early.
func (r *Runner) Execute(ctx context.Context, tc config.Testcase, w io.Writer) error {
	msg, runErr := r.run(ctx, tc)
	if err := api.WriteMessage(w, msg); err != nil {
		return err
	}
	return runErr
}

func (r *Runner) run(ctx context.Context, tc config.Testcase) (api.Message, error) {
	log := r.log.With("testcase", tc.Name, "path", tc.Path)
	spawnError := func(err error) api.Message {
		log.Warn("testcase could not be run", "error", err)
		return api.NewSpawnError(tc.Name, tc.Path, err.Error())
	}

	capture, err := platform.NewPipe()
	if err != nil {
		return spawnError(err), nil
	}
	defer capture.Close()

	var stdin *platform.Pipe
	if tc.Input != nil {
		stdin, err = platform.NewPipe()
		if err != nil {
			return spawnError(err), nil
		}
		defer stdin.Close()
	}

	path := config.BinaryPath(r.opts.TestsDir, tc)
	cmd := exec.Command(path, tc.Argv...)
	platform.ConfigureChild(cmd)
	if stdin != nil {
		err = platform.RedirectChild(cmd, platform.Stdin, stdin.ReadEnd)
	} else {
		err = platform.RedirectChild(cmd, platform.Stdin, os.Stdin)
	}
	if err == nil {
		err = platform.RedirectChild(cmd, platform.Stdout, capture.WriteEnd)
	}
	if err == nil {
		err = platform.RedirectChild(cmd, platform.Stderr, capture.WriteEnd)
	}
	if err != nil {
		return spawnError(err), nil
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return spawnError(err), nil
	}
	pid := cmd.Process.Pid
	log.Debug("started test binary", "pid", pid, "argv", cmd.Args)

	// child-side ends belong to the child now
	_ = capture.WriteEnd.Close()
	if stdin != nil {
		_ = stdin.ReadEnd.Close()
		go func() {
			defer stdin.WriteEnd.Close()
			if _, err := stdin.WriteEnd.Write(tc.Input); err != nil {
				log.Debug("input not fully delivered", "error", err)
			}
		}()
	}

	output := newHeadBuffer(r.opts.CaptureLimit)
	captured := make(chan struct{})
	go func() {
		defer close(captured)
		_, _ = io.Copy(output, capture.ReadEnd)
	}()

	exited := make(chan exitEvent, 1)
	go func() {
		exited <- awaitExit(cmd)
	}()

	var timeout <-chan time.Time
	if tc.TimeoutMs > 0 {
		timer := time.NewTimer(time.Duration(tc.TimeoutMs) * time.Millisecond)
		defer timer.Stop()
		timeout = timer.C
	}

	var ev exitEvent
	select {
	case ev = <-exited:
	case <-timeout:
		if !platform.Exited(pid) {
			r.kill(log, cmd)
			_ = (<-exited).reap(cmd)
			log.Info("testcase timed out", "timeout_ms", tc.TimeoutMs)
			return api.NewTimeout(tc.Name, tc.Path, tc.TimeoutMs), nil
		}
		ev = <-exited
	case <-ctx.Done():
		r.kill(log, cmd)
		_ = (<-exited).reap(cmd)
		return api.NewUnreported(tc.Name, tc.Path, context.Cause(ctx).Error()), ctx.Err()
	}
	elapsed := time.Since(start)

	// An unreaped binary keeps its process group id reserved, so leftover
	// descendants are killed before the reap.
	if !ev.reaped {
		_ = platform.KillGroup(pid)
	}
	waitErr := ev.reap(cmd)
	if ev.reaped {
		_ = platform.KillGroup(pid)
	}

	var exitErr *exec.ExitError
	if cmd.ProcessState == nil || (waitErr != nil && !errors.As(waitErr, &exitErr)) {
		return spawnError(fmt.Errorf("failed to wait for test binary: %w", waitErr)), nil
	}

	term := platform.ClassifyTermination(cmd.ProcessState)
	if !term.Abnormal {
		log.Debug("testcase finished", "exit_code", term.Code, "elapsed", elapsed)
		return api.NewSuccess(tc.Name, tc.Path, term.Code), nil
	}

	select {
	case <-captured:
	case <-time.After(r.opts.CaptureGrace):
		log.Warn("captured output still open after grace period", "grace", r.opts.CaptureGrace)
	}
	msg, cut := api.FitDiagnostic(api.NewAborted(tc.Name, tc.Path, term.SignalName(), string(output.Bytes())))
	log.Info("testcase aborted", "signal", term.Short(), "output_bytes", output.TotalBytes(),
		"truncated", output.Truncated() || cut)
	return msg, nil
}

// exitEvent tells that the binary terminated. Where the platform cannot wait
// without reaping, the binary has already been reaped.
type exitEvent struct {
	reaped bool
	err    error
}

func awaitExit(cmd *exec.Cmd) exitEvent {
	if err := platform.WaitExited(cmd.Process.Pid); errors.Is(err, errors.ErrUnsupported) {
		return exitEvent{reaped: true, err: cmd.Wait()}
	}
	return exitEvent{}
}

// reap returns the wait error, reaping the binary if that has not happened.
func (ev exitEvent) reap(cmd *exec.Cmd) error {
	if ev.reaped {
		return ev.err
	}
	return cmd.Wait()
}

func (r *Runner) kill(log *slog.Logger, cmd *exec.Cmd) {
	if err := platform.KillGroup(cmd.Process.Pid); err != nil {
		log.Warn("failed to kill process group, killing the binary only", "error", err)
		_ = cmd.Process.Kill()
	}
}
