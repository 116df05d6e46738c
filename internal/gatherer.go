package internal

import "github.com/programme-lv/catalyst/api"

// ResultGatherer receives the events of one run. Results arrive in testcase
// list order.
type ResultGatherer interface {
	StartRun(testcases int)
	FinishTest(index int, result api.Message)

	InternalError(msg string)
	FinishNoError()
}

// Gatherers fans every event out to each gatherer in turn.
type Gatherers []ResultGatherer

func (gs Gatherers) StartRun(testcases int) {
	for _, g := range gs {
		g.StartRun(testcases)
	}
}

func (gs Gatherers) FinishTest(index int, result api.Message) {
	for _, g := range gs {
		g.FinishTest(index, result)
	}
}

func (gs Gatherers) InternalError(msg string) {
	for _, g := range gs {
		g.InternalError(msg)
	}
}

func (gs Gatherers) FinishNoError() {
	for _, g := range gs {
		g.FinishNoError()
	}
}

// Replay feeds a finished run's results to g.
func Replay(g ResultGatherer, results []api.Message, runErr error) {
	for i, r := range results {
		g.FinishTest(i, r)
	}
	if runErr != nil {
		g.InternalError(runErr.Error())
		return
	}
	g.FinishNoError()
}
