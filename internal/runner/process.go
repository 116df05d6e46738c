package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/programme-lv/catalyst/api"
	"github.com/programme-lv/catalyst/internal/config"
	"github.com/programme-lv/catalyst/internal/exitcodes"
)

// Descriptors a runner process finds open when it is started by the
// orchestrator: the request (read until end-of-file) and the result channel.
const (
	RequestFd = 3
	ResultFd  = 4
)

// Request is what the orchestrator sends a runner process.
type Request struct {
	Testcase       config.Testcase `json:"testcase"`
	TestsDir       string          `json:"tests_dir"`
	CaptureLimit   int             `json:"capture_limit"`
	CaptureGraceMs int64           `json:"capture_grace_ms"`
}

func NewRequest(tc config.Testcase, opts Options) Request {
	return Request{
		Testcase:       tc,
		TestsDir:       opts.TestsDir,
		CaptureLimit:   opts.CaptureLimit,
		CaptureGraceMs: opts.CaptureGrace.Milliseconds(),
	}
}

func (req Request) Options(logger *slog.Logger) Options {
	return Options{
		TestsDir:     req.TestsDir,
		CaptureLimit: req.CaptureLimit,
		CaptureGrace: time.Duration(req.CaptureGraceMs) * time.Millisecond,
		Logger:       logger,
	}
}

// ReadRequest decodes a request and expects nothing after it.
func ReadRequest(r io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("failed to decode runner request: %w", err)
	}
	return req, nil
}

// Serve is the body of a runner process. It reads the request from
// RequestFd, executes the testcase and writes the result to ResultFd.
func Serve(ctx context.Context, logger *slog.Logger) error {
	reqFile := os.NewFile(RequestFd, "request")
	resFile := os.NewFile(ResultFd, "result")
	for _, f := range []*os.File{reqFile, resFile} {
		if _, err := f.Stat(); err != nil {
			return fmt.Errorf("runner descriptor %s is not open: %w", f.Name(), err)
		}
	}
	defer resFile.Close()

	req, err := ReadRequest(reqFile)
	_ = reqFile.Close()
	if err != nil {
		return err
	}
	return ServeRequest(ctx, req, resFile, logger)
}

// ServeRequest executes one decoded request against the result channel w.
func ServeRequest(ctx context.Context, req Request, w io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("pid", os.Getpid())
	return New(req.Options(logger)).Execute(ctx, req.Testcase, w)
}

// ExitCode is the exit status of a runner process that finished with err.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case errors.Is(err, api.ErrMessageTooLarge):
		return exitcodes.MessageTooLarge
	default:
		return exitcodes.RuntimeErr
	}
}
