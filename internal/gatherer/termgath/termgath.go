package termgath

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/programme-lv/catalyst/api"
)

var (
	successTag = color.New(color.FgGreen, color.Bold).SprintFunc()
	failureTag = color.New(color.FgRed, color.Bold).SprintFunc()
)

// TerminalGatherer prints one line per result and, optionally, a summary
// table once the run is over.
type TerminalGatherer struct {
	out       io.Writer
	summary   bool
	StartedAt time.Time

	results []api.Message
}

func New(out io.Writer, summary bool) *TerminalGatherer {
	return &TerminalGatherer{out: out, summary: summary, StartedAt: time.Now()}
}

func (t *TerminalGatherer) StartRun(testcases int) {
	t.StartedAt = time.Now()
	t.results = make([]api.Message, 0, testcases)
}

func (t *TerminalGatherer) FinishTest(index int, result api.Message) {
	t.results = append(t.results, result)
	fmt.Fprintln(t.out, Line(result))
}

func (t *TerminalGatherer) InternalError(msg string) {
	fmt.Fprintf(t.out, "[ %s ] run aborted: %s\n", failureTag("FAILURE"), msg)
}

func (t *TerminalGatherer) FinishNoError() {
	if !t.summary {
		return
	}
	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	counts := api.CountKinds(t.results)

	tw := table.NewWriter()
	tw.SetOutputMirror(t.out)
	tw.SetTitle("Run finished in %s", dur)
	tw.AppendHeader(table.Row{"Outcome", "Testcases"})
	for _, kind := range []api.Kind{api.Success, api.Timeout, api.Aborted, api.SpawnError, api.Unreported} {
		if counts[kind] == 0 {
			continue
		}
		tw.AppendRow(table.Row{string(kind), counts[kind]})
	}
	tw.AppendFooter(table.Row{"total", len(t.results)})
	tw.SetStyle(table.StyleLight)
	tw.Render()
}

// Line renders a result with a coloured tag.
func Line(m api.Message) string {
	tag := successTag(m.Tag())
	if m.Failed() {
		tag = failureTag(m.Tag())
	}
	return fmt.Sprintf("[ %s ] %s", tag, m.Text())
}
