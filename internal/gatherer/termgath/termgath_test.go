package termgath_test

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/programme-lv/catalyst/api"
	"github.com/programme-lv/catalyst/internal/gatherer/termgath"
	"github.com/stretchr/testify/assert"
)

func TestTerminalGatherer(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	g := termgath.New(&out, true)
	g.StartRun(2)
	g.FinishTest(0, api.NewSuccess("a", "a", 0))
	g.FinishTest(1, api.NewTimeout("b", "b", 100))
	g.FinishNoError()

	s := out.String()
	assert.Contains(t, s, "[ SUCCESS ] testcase 'a' for 'a' finished successfully\n")
	assert.Contains(t, s, "[ FAILURE ] testcase 'b' for test 'b' did not exit within 100 milliseconds\n")
	assert.Contains(t, s, "Run finished in")
	assert.Contains(t, s, "timeout")
	assert.NotContains(t, s, "spawn_error")
}

func TestTerminalGathererWithoutSummary(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	g := termgath.New(&out, false)
	g.StartRun(1)
	g.FinishTest(0, api.NewAborted("c", "c", "aborted", ""))
	g.FinishNoError()
	assert.Equal(t, "[ FAILURE ] testcase 'c' for test 'c' aborted\n", out.String())

	out.Reset()
	g.InternalError("result message too large")
	assert.Equal(t, "[ FAILURE ] run aborted: result message too large\n", out.String())
}

func TestLineMatchesPlainRendering(t *testing.T) {
	color.NoColor = true
	m := api.NewSpawnError("d", "d", "permission denied")
	assert.Equal(t, m.String(), termgath.Line(m))
}
