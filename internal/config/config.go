package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// DefaultTestsDir is joined to every testcase path when no tests_dir is given.
const DefaultTestsDir = "tests"

// ErrMissingBinary is returned when a testcase's binary does not exist or is
// not an executable regular file.
var ErrMissingBinary = errors.New("test binary missing")

// Testcase describes one execution of a test binary.
type Testcase struct {
	// Path of the binary relative to the tests directory
	Path string   `json:"path"`
	Name string   `json:"name"`
	Argv []string `json:"argv"`

	// Input is fed to the binary's stdin. Nil means the binary reads no
	// input and inherits stdin instead; an empty non-nil slice is delivered
	// as an immediate end-of-file.
	Input []byte `json:"input"`

	// ExpectedOutput is carried but never compared
	ExpectedOutput []byte `json:"expected_output"`

	// TimeoutMs of zero means no timeout
	TimeoutMs int64 `json:"timeout_ms"`
}

// Clone returns a deep copy of tc.
func (tc Testcase) Clone() Testcase {
	c := tc
	c.Argv = slices.Clone(tc.Argv)
	if tc.Input != nil {
		c.Input = append([]byte{}, tc.Input...)
	}
	if tc.ExpectedOutput != nil {
		c.ExpectedOutput = append([]byte{}, tc.ExpectedOutput...)
	}
	return c
}

// Job is a build step declared in the configuration. Jobs are listed but
// never executed.
type Job struct {
	Name           string   `json:"name"`
	BuildCommand   string   `json:"build_command"`
	BuildArguments []string `json:"build_arguments"`
}

type Configuration struct {
	Jobs      []Job
	Testcases []Testcase
	TestsDir  string
}

// BinaryPath is the path a testcase's binary is spawned from.
func BinaryPath(testsDir string, tc Testcase) string {
	if testsDir == "" {
		testsDir = DefaultTestsDir
	}
	return filepath.Join(testsDir, tc.Path)
}

func (c Configuration) BinaryPath(tc Testcase) string {
	return BinaryPath(c.TestsDir, tc)
}

// CheckBinary reports whether path names an executable regular file.
func CheckBinary(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingBinary, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrMissingBinary, path)
	}
	if info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("%w: %s is not executable", ErrMissingBinary, path)
	}
	return nil
}

// Validate checks the configuration's structure: every testcase needs a path
// and a non-negative timeout, every job a build command.
func (c Configuration) Validate() error {
	var errs []error
	for i, tc := range c.Testcases {
		if tc.Path == "" {
			errs = append(errs, fmt.Errorf("testcase %d (%q): file is required", i, tc.Name))
		}
		if tc.TimeoutMs < 0 {
			errs = append(errs, fmt.Errorf("testcase %q: negative timeout %d", tc.Name, tc.TimeoutMs))
		}
	}
	for i, job := range c.Jobs {
		if job.BuildCommand == "" {
			errs = append(errs, fmt.Errorf("job %d (%q): make is required", i, job.Name))
		}
	}
	return errors.Join(errs...)
}

// CheckBinaries verifies that every testcase's binary exists. A run still
// goes ahead without them; their testcases fail to spawn.
func (c Configuration) CheckBinaries() error {
	var errs []error
	for _, tc := range c.Testcases {
		if err := CheckBinary(c.BinaryPath(tc)); err != nil {
			errs = append(errs, fmt.Errorf("testcase %q: %w", tc.Name, err))
		}
	}
	return errors.Join(errs...)
}
