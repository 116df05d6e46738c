package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/programme-lv/catalyst/api"
	"github.com/programme-lv/catalyst/internal/exitcodes"
	"github.com/programme-lv/catalyst/internal/platform"
	"github.com/programme-lv/catalyst/internal/runner"
)

// Handle represents a launched runner.
type Handle interface {
	// Wait blocks until the runner has finished and returns why it failed,
	// if it did. Safe to call more than once.
	Wait() error
	// Kill terminates the runner and, with it, its test binary. It does not
	// wait for the runner to finish.
	Kill() error
}

// Launcher starts a runner that reports into result. Once Launch succeeds
// the launcher owns result and closes it; on failure the caller keeps it.
type Launcher interface {
	Launch(ctx context.Context, req runner.Request, result *os.File) (Handle, error)
}

// ProcessLauncher runs every testcase in a separate runner process. The
// runner process receives the request on descriptor runner.RequestFd and
// the result channel on runner.ResultFd.
type ProcessLauncher struct {
	// Executable defaults to the running binary
	Executable string
	Args       []string
	// Env of the runner process; nil inherits the environment
	Env []string
	// KillGrace is how long a runner process asked to stop may take to kill
	// its test binary's process group and exit before it is SIGKILLed.
	KillGrace time.Duration
	Logger    *slog.Logger
}

// DefaultKillGrace is the KillGrace used when none is set.
const DefaultKillGrace = 2 * time.Second

// RunnerCommand is the hidden command a catalyst binary runs as a runner.
const RunnerCommand = "runner"

// NewProcessLauncher re-executes the current binary with the runner command.
func NewProcessLauncher(logger *slog.Logger) *ProcessLauncher {
	return &ProcessLauncher{Args: []string{RunnerCommand}, Logger: logger}
}

func (l *ProcessLauncher) Launch(ctx context.Context, req runner.Request, result *os.File) (Handle, error) {
	exe := l.Executable
	if exe == "" {
		var err error
		exe, err = os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate runner executable: %w", err)
		}
	}
	log := l.Logger
	if log == nil {
		log = slog.Default()
	}

	request, err := platform.NewPipe()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(exe, l.Args...)
	cmd.Env = l.Env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// index i lands on descriptor 3+i
	cmd.ExtraFiles = []*os.File{request.ReadEnd, result}

	if err := cmd.Start(); err != nil {
		_ = request.Close()
		return nil, fmt.Errorf("failed to start runner process: %w", err)
	}
	_ = request.ReadEnd.Close()
	_ = result.Close()

	// requests can exceed the pipe buffer, so they are written concurrently
	go func() {
		defer request.WriteEnd.Close()
		if err := json.NewEncoder(request.WriteEnd).Encode(req); err != nil {
			log.Warn("failed to send request to runner process", "testcase", req.Testcase.Name, "error", err)
		}
	}()

	grace := l.KillGrace
	if grace <= 0 {
		grace = DefaultKillGrace
	}
	h := &processHandle{cmd: cmd, grace: grace, log: log}
	h.wait = sync.OnceValue(h.reap)
	return h, nil
}

type processHandle struct {
	cmd  *exec.Cmd
	wait func() error

	grace    time.Duration
	log      *slog.Logger
	escalate sync.Once
}

func (h *processHandle) Wait() error {
	return h.wait()
}

func (h *processHandle) reap() error {
	err := h.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == exitcodes.MessageTooLarge {
		return fmt.Errorf("runner process %d: %w", h.cmd.Process.Pid, api.ErrMessageTooLarge)
	}
	if err != nil {
		return fmt.Errorf("runner process %d: %w", h.cmd.Process.Pid, err)
	}
	return nil
}

// Kill sends SIGTERM, which the runner process turns into killing its test
// binary's process group. A runner still alive after the grace period gets
// SIGKILL.
func (h *processHandle) Kill() error {
	err := h.cmd.Process.Signal(syscall.SIGTERM)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	if err != nil {
		return err
	}
	h.escalate.Do(func() {
		go h.killAfterGrace()
	})
	return nil
}

func (h *processHandle) killAfterGrace() {
	exited := make(chan struct{})
	go func() {
		_ = h.wait()
		close(exited)
	}()

	timer := time.NewTimer(h.grace)
	defer timer.Stop()
	select {
	case <-exited:
	case <-timer.C:
		h.log.Warn("runner process ignored SIGTERM, killing it", "pid", h.cmd.Process.Pid, "grace", h.grace)
		if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			h.log.Warn("failed to kill runner process", "pid", h.cmd.Process.Pid, "error", err)
		}
	}
}

// InProcessLauncher runs every testcase on a goroutine of the calling
// process. Test binaries are still separate processes.
type InProcessLauncher struct {
	Logger *slog.Logger
}

var errKilled = errors.New("runner killed")

func (l *InProcessLauncher) Launch(ctx context.Context, req runner.Request, result *os.File) (Handle, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	h := &goroutineHandle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer result.Close()
		defer cancel(nil)
		h.err = runner.New(req.Options(l.Logger)).Execute(ctx, req.Testcase, result)
	}()
	return h, nil
}

type goroutineHandle struct {
	cancel context.CancelCauseFunc
	done   chan struct{}
	err    error
}

func (h *goroutineHandle) Wait() error {
	<-h.done
	return h.err
}

func (h *goroutineHandle) Kill() error {
	h.cancel(errKilled)
	return nil
}
