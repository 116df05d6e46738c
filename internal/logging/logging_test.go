package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/programme-lv/catalyst/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := logging.ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = logging.ParseLevel(" warn ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = logging.ParseLevel("loud")
	require.Error(t, err)
}

func TestNewLoggerWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewLogger(&buf, slog.LevelInfo)

	log.Debug("hidden")
	log.Info("testcase timed out", "testcase", "b", "timeout_ms", 100)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "testcase timed out")
	assert.Contains(t, out, "timeout_ms=100")
	assert.NotContains(t, out, "\x1b[", "no colour outside a terminal")
}
