package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Pipe is a unidirectional byte channel between two parties.
type Pipe struct {
	ReadEnd  *os.File
	WriteEnd *os.File
}

func NewPipe() (*Pipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipe: %w", err)
	}
	return &Pipe{ReadEnd: r, WriteEnd: w}, nil
}

// Close closes both ends. Ends already closed are ignored.
func (p *Pipe) Close() error {
	var errs []error
	for _, f := range []*os.File{p.ReadEnd, p.WriteEnd} {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stream identifies a standard stream of a child process.
type Stream int

const (
	Stdin Stream = iota
	Stdout
	Stderr
)

func (s Stream) String() string {
	switch s {
	case Stdin:
		return "stdin"
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	}
	return fmt.Sprintf("stream(%d)", int(s))
}

// RedirectChild makes the child's stream refer to f once cmd starts.
func RedirectChild(cmd *exec.Cmd, stream Stream, f *os.File) error {
	switch stream {
	case Stdin:
		cmd.Stdin = f
	case Stdout:
		cmd.Stdout = f
	case Stderr:
		cmd.Stderr = f
	default:
		return fmt.Errorf("cannot redirect %s", stream)
	}
	return nil
}
