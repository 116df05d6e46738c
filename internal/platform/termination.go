package platform

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Termination is how a child process ended. Any termination by signal counts
// as abnormal, whatever the signal.
type Termination struct {
	Abnormal bool
	Code     int
	Signal   syscall.Signal
}

// SignalName is the lowercase description of the terminating signal, e.g.
// "aborted" for SIGABRT.
func (t Termination) SignalName() string {
	if !t.Abnormal {
		return ""
	}
	return t.Signal.String()
}

// Short is the signal's abbreviation, e.g. "SIGABRT".
func (t Termination) Short() string {
	if !t.Abnormal {
		return ""
	}
	if name := unix.SignalName(t.Signal); name != "" {
		return name
	}
	return t.Signal.String()
}

func Normal(code int) Termination {
	return Termination{Code: code}
}

func Abnormal(sig syscall.Signal) Termination {
	return Termination{Abnormal: true, Code: -1, Signal: sig}
}

// ClassifyTermination maps a reaped process state onto Normal or Abnormal.
func ClassifyTermination(state *os.ProcessState) Termination {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Abnormal(ws.Signal())
	}
	return Normal(state.ExitCode())
}
