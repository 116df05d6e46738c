package orchestrator_test

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"testing"

	"github.com/programme-lv/catalyst/internal/runner"
)

const runnerEnv = "CATALYST_TEST_RUNNER_PROCESS"

// TestMain lets the test binary act as a runner process for the process
// launcher tests.
func TestMain(m *testing.M) {
	if os.Getenv(runnerEnv) == "1" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err := runner.Serve(ctx, slog.New(slog.NewTextHandler(os.Stderr, nil)))
		stop()
		os.Exit(runner.ExitCode(err))
	}
	os.Exit(m.Run())
}
