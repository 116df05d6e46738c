package main

import (
	"context"
	"log/slog"

	"github.com/programme-lv/catalyst/internal/orchestrator"
	"github.com/programme-lv/catalyst/internal/runner"
	"github.com/urfave/cli/v3"
)

// runnerCommand is what the orchestrator re-executes for every testcase.
func runnerCommand() *cli.Command {
	return &cli.Command{
		Name:   orchestrator.RunnerCommand,
		Usage:  "Execute a single testcase handed over on descriptors 3 and 4",
		Hidden: true,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			err := runner.Serve(ctx, slog.Default())
			if err != nil {
				slog.Error("runner failed", "error", err)
				return cli.Exit("", runner.ExitCode(err))
			}
			return nil
		},
	}
}
