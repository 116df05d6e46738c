package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/programme-lv/catalyst/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfiguration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "adder"), []byte("#!/bin/sh\nexit 0\n"), 0755))

	cfg := config.Configuration{
		TestsDir: dir,
		Jobs:     []config.Job{{Name: "build", BuildCommand: "make", BuildArguments: []string{"all"}}},
		Testcases: []config.Testcase{
			{Path: "adder", Name: "with timeout", Input: []byte("5\n"), TimeoutMs: 100},
			{Path: "adder", Name: "no timeout"},
			{Path: "missing", Name: "gone"},
			{Path: "adder", Name: "negative", TimeoutMs: -5},
		},
	}

	feedback := checkConfiguration(cfg)
	byUnit := make(map[string]feedbackRow)
	for _, row := range feedback {
		byUnit[row.unit] = row
	}

	assert.Equal(t, healthError, byUnit["configuration"].health)
	assert.Contains(t, byUnit["configuration"].message, "negative timeout")

	assert.Equal(t, "make all (not executed)", byUnit["job build"].message)

	ok := byUnit["testcase with timeout"]
	assert.Equal(t, healthOK, ok.health)
	assert.Equal(t, filepath.Join(dir, "adder")+", 2 bytes of input, timeout 100ms", ok.message)

	assert.Equal(t, healthWarn, byUnit["testcase no timeout"].health)
	assert.Equal(t, healthError, byUnit["testcase gone"].health)
	assert.ErrorIs(t, config.CheckBinary(filepath.Join(dir, "missing")), config.ErrMissingBinary)
}

func TestOutputFeedback(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	var buf bytes.Buffer
	outputFeedback(&buf, []feedbackRow{
		{unit: "testcase a", health: healthOK, message: "tests/a, inherits stdin"},
		{unit: "testcase b", health: healthError, message: "test binary missing"},
	})
	out := buf.String()
	assert.Contains(t, out, "OKAY")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "testcase b")
}
