package respbuilder

import (
	"time"

	"github.com/programme-lv/catalyst/api"
)

// Builder gathers run events and builds a complete api.RunReport.
type Builder struct {
	runUuid string

	started  time.Time
	finished *time.Time

	results []api.Message

	internalError bool
	errorMessage  *string
}

func New(runUuid string) *Builder {
	return &Builder{
		runUuid: runUuid,
		started: time.Now(),
	}
}

// StartRun implements ResultGatherer.
func (b *Builder) StartRun(testcases int) {
	b.started = time.Now()
	b.results = make([]api.Message, 0, testcases)
}

// FinishTest implements ResultGatherer.
func (b *Builder) FinishTest(index int, result api.Message) {
	b.results = append(b.results, result)
}

// InternalError implements ResultGatherer.
func (b *Builder) InternalError(msg string) {
	b.internalError = true
	b.errorMessage = &msg
	b.finish()
}

// FinishNoError implements ResultGatherer.
func (b *Builder) FinishNoError() {
	b.finish()
}

func (b *Builder) finish() {
	now := time.Now()
	b.finished = &now
}

// Report builds the api.RunReport from gathered data.
func (b *Builder) Report() api.RunReport {
	start := b.started.Format(time.RFC3339)
	finish := start
	total := int64(0)
	if b.finished != nil {
		finish = b.finished.Format(time.RFC3339)
		total = b.finished.Sub(b.started).Milliseconds()
	}

	status := api.StatusOf(b.results)
	if b.internalError {
		status = api.RunInternalError
	}

	results := b.results
	if results == nil {
		results = []api.Message{}
	}
	return api.RunReport{
		RunUuid: b.runUuid,
		Status:  status,
		Results: results,
		Counts:  api.CountKinds(b.results),
		ErrorMessage: func() *string {
			if b.errorMessage == nil {
				return nil
			}
			v := *b.errorMessage
			return &v
		}(),
		StartTime:   start,
		FinishTime:  finish,
		TotalTimeMs: total,
	}
}
