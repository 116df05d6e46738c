package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/programme-lv/catalyst/internal/environment"
	"github.com/programme-lv/catalyst/internal/exitcodes"
	"github.com/programme-lv/catalyst/internal/flags"
	"github.com/programme-lv/catalyst/internal/logging"
	"github.com/urfave/cli/v3"
)

var Version = "v0.1.0"

func main() {
	envFile := os.Getenv(flags.EnvFileVar)
	if envFile == "" {
		envFile = ".env"
	}
	if err := environment.LoadDotEnv(envFile); err != nil {
		slog.Error("failed to load environment", "error", err)
		os.Exit(exitcodes.RuntimeErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().Run(ctx, os.Args)
	stop()
	os.Exit(exitCode(err))
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "catalyst",
		Version: Version,
		Usage:   "Run black-box testcases against test binaries",
		Flags:   flags.GlobalFlags,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if _, err := logging.Setup(cmd.String(flags.LogLevel.Name)); err != nil {
				return ctx, exitcodes.NewRuntimeError(err)
			}
			return ctx, nil
		},
		DefaultCommand: "run",
		Commands: []*cli.Command{
			runCommand(),
			checkCommand(),
			runnerCommand(),
		},
		// exit codes are decided in main
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitcodes.Success
	}
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		return exitCoder.ExitCode()
	}

	code := exitcodes.Code(err)
	if code == exitcodes.TestFailure {
		slog.Info("run finished with failures", "detail", err)
	} else {
		slog.Error("catalyst failed", "error", err)
	}
	return code
}
