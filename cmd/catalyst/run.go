package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/programme-lv/catalyst/api"
	"github.com/programme-lv/catalyst/internal"
	"github.com/programme-lv/catalyst/internal/config"
	"github.com/programme-lv/catalyst/internal/exitcodes"
	"github.com/programme-lv/catalyst/internal/flags"
	"github.com/programme-lv/catalyst/internal/gatherer/natsgath"
	"github.com/programme-lv/catalyst/internal/gatherer/respbuilder"
	"github.com/programme-lv/catalyst/internal/gatherer/sqsgath"
	"github.com/programme-lv/catalyst/internal/gatherer/termgath"
	"github.com/programme-lv/catalyst/internal/orchestrator"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Run every testcase of the configuration and report the results",
		Flags:  flags.RunFlags,
		Action: run,
	}
}

// gatherers that deliver results to a remote service
type deliveryGatherer interface {
	internal.ResultGatherer
	Err() error
}

func run(ctx context.Context, cmd *cli.Command) error {
	log := slog.Default()

	cfg, err := config.Load(ctx, configPath(cmd))
	if err != nil {
		return exitcodes.NewRuntimeError(err)
	}
	if err := cfg.Validate(); err != nil {
		return exitcodes.NewRuntimeError(fmt.Errorf("invalid configuration: %w", err))
	}
	if err := cfg.CheckBinaries(); err != nil {
		log.Warn("some test binaries are missing", "error", err)
	}

	runUuid := uuid.NewString()
	log = log.With("run", runUuid)

	gatherers := internal.Gatherers{termgath.New(os.Stdout, cmd.Bool(flags.Summary.Name))}
	var deliveries []deliveryGatherer

	if url := cmd.String(flags.NatsURL.Name); url != "" {
		nc, err := natsgath.Connect(url)
		if err != nil {
			return exitcodes.NewRuntimeError(err)
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				log.Warn("failed to drain NATS connection", "error", err)
			}
		}()
		g := natsgath.New(nc, runUuid, cmd.String(flags.NatsSubject.Name), log)
		gatherers = append(gatherers, g)
		deliveries = append(deliveries, g)
	}
	if url := cmd.String(flags.SqsQueueURL.Name); url != "" {
		g, err := sqsgath.NewSqsResponseQueueGatherer(ctx, runUuid, url, cmd.String(flags.AwsRegion.Name), log)
		if err != nil {
			return exitcodes.NewRuntimeError(err)
		}
		gatherers = append(gatherers, g)
		deliveries = append(deliveries, g)
	}
	var report *respbuilder.Builder
	if cmd.String(flags.Report.Name) != "" {
		report = respbuilder.New(runUuid)
		gatherers = append(gatherers, report)
	}

	var launcher orchestrator.Launcher = &orchestrator.InProcessLauncher{Logger: log}
	if !cmd.Bool(flags.InProcess.Name) {
		pl := orchestrator.NewProcessLauncher(log)
		pl.Args = []string{"--" + flags.LogLevel.Name, cmd.String(flags.LogLevel.Name), orchestrator.RunnerCommand}
		launcher = pl
	}
	orch := orchestrator.New(orchestrator.Options{
		Deadline: cmd.Duration(flags.Deadline.Name),
		Launcher: launcher,
		Logger:   log,
	})

	log.Info("starting run", "testcases", len(cfg.Testcases), "tests_dir", cfg.TestsDir)
	gatherers.StartRun(len(cfg.Testcases))
	results, runErr := orch.Run(ctx, cfg)
	internal.Replay(gatherers, results, runErr)

	for _, d := range deliveries {
		if err := d.Err(); err != nil {
			log.Warn("results were not fully delivered", "error", err)
		}
	}
	if report != nil {
		if err := writeReport(cmd.String(flags.Report.Name), report.Report()); err != nil {
			return exitcodes.NewRuntimeError(err)
		}
	}

	if runErr != nil {
		return exitcodes.NewRuntimeError(runErr)
	}
	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return exitcodes.NewTestFailureError(failed, len(results))
	}
	return nil
}

func writeReport(path string, report api.RunReport) error {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
