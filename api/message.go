package api

import "fmt"

// Kind is the outcome of a single testcase.
type Kind string

// Outcome kinds carried by a result message
const (
	Success    Kind = "success"
	Timeout    Kind = "timeout"
	Aborted    Kind = "aborted"
	SpawnError Kind = "spawn_error"
	// Unreported is never written by a runner. The orchestrator synthesises
	// it for a channel that closed empty or outlived the run deadline.
	Unreported Kind = "unreported"
)

func (k Kind) valid() bool {
	switch k {
	case Success, Timeout, Aborted, SpawnError, Unreported:
		return true
	}
	return false
}

// Header is the common header of every result message
type Header struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Message is the single terminal payload a runner emits for its testcase.
// Which of the payload fields are set depends on Kind.
type Message struct {
	Header

	// Success
	ExitCode *int `json:"exit,omitempty"`

	// Timeout
	TimeoutMs int64 `json:"timeout_ms,omitempty"`

	// Aborted
	Signal     string `json:"signal,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`

	// SpawnError, Unreported
	Reason string `json:"reason,omitempty"`
}

func NewHeader(kind Kind, name, path string) Header {
	return Header{Kind: kind, Name: name, Path: path}
}

func NewSuccess(name, path string, exitCode int) Message {
	return Message{
		Header:   NewHeader(Success, name, path),
		ExitCode: &exitCode,
	}
}

func NewTimeout(name, path string, timeoutMs int64) Message {
	return Message{
		Header:    NewHeader(Timeout, name, path),
		TimeoutMs: timeoutMs,
	}
}

// NewAborted builds the message for a testcase killed by a signal. An empty
// diagnostic selects the generic phrasing.
func NewAborted(name, path, signal, diagnostic string) Message {
	return Message{
		Header:     NewHeader(Aborted, name, path),
		Signal:     signal,
		Diagnostic: diagnostic,
	}
}

func NewSpawnError(name, path, reason string) Message {
	return Message{
		Header: NewHeader(SpawnError, name, path),
		Reason: reason,
	}
}

func NewUnreported(name, path, reason string) Message {
	return Message{
		Header: NewHeader(Unreported, name, path),
		Reason: reason,
	}
}

// Failed reports whether the message describes anything other than success.
func (m Message) Failed() bool {
	return m.Kind != Success
}

// Tag is the bracketed status shown in front of the line.
func (m Message) Tag() string {
	if m.Failed() {
		return "FAILURE"
	}
	return "SUCCESS"
}

// Text is the line without its status tag.
func (m Message) Text() string {
	switch m.Kind {
	case Success:
		return fmt.Sprintf("testcase '%s' for '%s' finished successfully", m.Name, m.Path)
	case Timeout:
		return fmt.Sprintf("testcase '%s' for test '%s' did not exit within %d milliseconds",
			m.Name, m.Path, m.TimeoutMs)
	case Aborted:
		if m.Diagnostic == "" {
			return fmt.Sprintf("testcase '%s' for test '%s' aborted", m.Name, m.Path)
		}
		return fmt.Sprintf("testcase '%s' for test '%s' aborted with the error message:\n%s",
			m.Name, m.Path, m.Diagnostic)
	case SpawnError:
		return fmt.Sprintf("testcase '%s' for test '%s' could not be run: %s", m.Name, m.Path, m.Reason)
	case Unreported:
		return fmt.Sprintf("testcase '%s' for test '%s' did not report a result: %s", m.Name, m.Path, m.Reason)
	}
	return fmt.Sprintf("testcase '%s' for test '%s' has unknown outcome %q", m.Name, m.Path, m.Kind)
}

// String renders the line-oriented form, e.g.
//
//	[ SUCCESS ] testcase 'a' for 'a' finished successfully
func (m Message) String() string {
	return fmt.Sprintf("[ %s ] %s", m.Tag(), m.Text())
}
