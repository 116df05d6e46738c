package sqsgath

import (
	"log/slog"
	"time"

	"github.com/programme-lv/catalyst/api"
	"github.com/programme-lv/catalyst/internal"
)

const (
	MaxDiagnosticHeight = 80
	MaxDiagnosticWidth  = 160
)

type sqsResQueueGatherer struct {
	sqsClient SendMessageAPI
	queueUrl  string
	runUuid   string
	log       *slog.Logger

	results []api.Message
	err     error
}

// StartRun implements ResultGatherer.
func (s *sqsResQueueGatherer) StartRun(testcases int) {
	s.results = make([]api.Message, 0, testcases)
	s.send(api.NewStartRun(s.runUuid, testcases, time.Now().Format(time.RFC3339)))
}

// FinishTest implements ResultGatherer.
func (s *sqsResQueueGatherer) FinishTest(index int, result api.Message) {
	s.results = append(s.results, result)
	result.Diagnostic = internal.TrimToRect(result.Diagnostic, MaxDiagnosticHeight, MaxDiagnosticWidth)
	s.send(api.NewTestResult(s.runUuid, index, result))
}

// InternalError implements ResultGatherer.
func (s *sqsResQueueGatherer) InternalError(msg string) {
	s.send(api.NewFinishRun(s.runUuid, api.RunInternalError, api.CountKinds(s.results), &msg))
}

// FinishNoError implements ResultGatherer.
func (s *sqsResQueueGatherer) FinishNoError() {
	s.send(api.NewFinishRun(s.runUuid, api.StatusOf(s.results), api.CountKinds(s.results), nil))
}

// Err is the first send failure, if any.
func (s *sqsResQueueGatherer) Err() error {
	return s.err
}
