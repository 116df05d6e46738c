package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/programme-lv/catalyst/internal/config"
	"github.com/programme-lv/catalyst/internal/exitcodes"
	"github.com/urfave/cli/v3"
)

type health int

const (
	healthOK health = iota
	healthWarn
	healthError
)

func (h health) String() string {
	switch h {
	case healthOK:
		return "OKAY"
	case healthWarn:
		return "WARN"
	}
	return "ERROR"
}

type feedbackRow struct {
	unit    string
	health  health
	message string
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate the configuration and list its jobs and testcases",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(ctx, configPath(cmd))
			if err != nil {
				return exitcodes.NewRuntimeError(err)
			}
			feedback := checkConfiguration(cfg)
			outputFeedback(os.Stdout, feedback)
			for _, row := range feedback {
				if row.health == healthError {
					return exitcodes.NewRuntimeError(errors.New("configuration has errors"))
				}
			}
			return nil
		},
	}
}

func checkConfiguration(cfg config.Configuration) []feedbackRow {
	feedback := make([]feedbackRow, 0, len(cfg.Jobs)+len(cfg.Testcases)+1)

	if err := cfg.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			feedback = append(feedback, feedbackRow{unit: "configuration", health: healthError, message: line})
		}
	}

	for _, job := range cfg.Jobs {
		feedback = append(feedback, feedbackRow{
			unit:    "job " + job.Name,
			health:  healthOK,
			message: strings.Join(append([]string{job.BuildCommand}, job.BuildArguments...), " ") + " (not executed)",
		})
	}

	for _, tc := range cfg.Testcases {
		row := feedbackRow{unit: "testcase " + tc.Name, health: healthOK}
		path := cfg.BinaryPath(tc)
		if err := config.CheckBinary(path); err != nil {
			row.health = healthError
			row.message = err.Error()
		} else {
			row.message = describeTestcase(path, tc)
		}
		if row.health == healthOK && tc.TimeoutMs == 0 {
			row.health = healthWarn
			row.message += ", no timeout"
		}
		feedback = append(feedback, row)
	}
	return feedback
}

func describeTestcase(path string, tc config.Testcase) string {
	input := "inherits stdin"
	if tc.Input != nil {
		input = fmt.Sprintf("%d bytes of input", len(tc.Input))
	}
	desc := fmt.Sprintf("%s, %s", path, input)
	if tc.TimeoutMs > 0 {
		desc += fmt.Sprintf(", timeout %dms", tc.TimeoutMs)
	}
	return desc
}

func outputFeedback(w io.Writer, feedback []feedbackRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Unit", "Health", "Message"})
	for _, row := range feedback {
		t.AppendRow(table.Row{row.unit, row.health.String(), row.message})
	}
	t.SetStyle(table.StyleLight)
	healthColor := text.Transformer(func(s interface{}) string {
		switch s.(string) {
		case "OKAY":
			return text.FgHiGreen.Sprint(s)
		case "WARN":
			return text.FgHiYellow.Sprint(s)
		case "ERROR":
			return text.FgHiRed.Sprint(s)
		}
		return fmt.Sprint(s)
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{
			Name:        "Health",
			Transformer: healthColor,
			Align:       text.AlignCenter,
		},
	})
	t.Render()
}
