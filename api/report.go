package api

// RunStatus summarises a whole run
type RunStatus string

const (
	RunPassed        RunStatus = "passed"
	RunFailed        RunStatus = "failed"
	RunInternalError RunStatus = "internal_error"
)

// RunReport is the complete, non-streaming report of a run
type RunReport struct {
	RunUuid string    `json:"run_uuid"`
	Status  RunStatus `json:"status"`

	// Results in testcase list order
	Results []Message `json:"results"`

	// Counts per outcome kind
	Counts map[Kind]int `json:"counts"`

	// Overall error message (for internal errors)
	ErrorMessage *string `json:"error_message,omitempty"`

	StartTime   string `json:"start_time"`
	FinishTime  string `json:"finish_time"`
	TotalTimeMs int64  `json:"total_time_ms"`
}

// ReportMsgType is the type of a streamed report message
type ReportMsgType string

const (
	StartRunMsg  ReportMsgType = "run_start"
	ResultMsg    ReportMsgType = "test_result"
	FinishRunMsg ReportMsgType = "run_finish"
)

// StreamHeader is the common header of every streamed report message
type StreamHeader struct {
	RunUuid string        `json:"run_uuid"`
	MsgType ReportMsgType `json:"msg_type"`
}

// StartRun is sent before the first result
type StartRun struct {
	StreamHeader
	Testcases   int    `json:"testcases"`
	StartedTime string `json:"started_time"`
}

// TestResult carries one result and its position in the testcase list
type TestResult struct {
	StreamHeader
	Index  int     `json:"index"`
	Result Message `json:"result"`
}

// FinishRun is sent after the last result
type FinishRun struct {
	StreamHeader
	Status       RunStatus    `json:"status"`
	Counts       map[Kind]int `json:"counts"`
	ErrorMessage *string      `json:"error_message"`
}

func NewStreamHeader(runUuid string, msgType ReportMsgType) StreamHeader {
	return StreamHeader{RunUuid: runUuid, MsgType: msgType}
}

func NewStartRun(runUuid string, testcases int, startedTime string) StartRun {
	return StartRun{
		StreamHeader: NewStreamHeader(runUuid, StartRunMsg),
		Testcases:    testcases,
		StartedTime:  startedTime,
	}
}

func NewTestResult(runUuid string, index int, result Message) TestResult {
	return TestResult{
		StreamHeader: NewStreamHeader(runUuid, ResultMsg),
		Index:        index,
		Result:       result,
	}
}

func NewFinishRun(runUuid string, status RunStatus, counts map[Kind]int, errorMessage *string) FinishRun {
	return FinishRun{
		StreamHeader: NewStreamHeader(runUuid, FinishRunMsg),
		Status:       status,
		Counts:       counts,
		ErrorMessage: errorMessage,
	}
}

// CountKinds tallies results per outcome kind.
func CountKinds(results []Message) map[Kind]int {
	counts := make(map[Kind]int)
	for _, r := range results {
		counts[r.Kind]++
	}
	return counts
}

// StatusOf derives the run status from the results.
func StatusOf(results []Message) RunStatus {
	for _, r := range results {
		if r.Failed() {
			return RunFailed
		}
	}
	return RunPassed
}
