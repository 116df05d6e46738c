package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/catalyst/internal/filestore"
	"golang.org/x/sync/errgroup"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = ".catalyst.toml"

// fileTestcase maps to [[testcase]] entries
type fileTestcase struct {
	Name      string   `toml:"name"`
	File      string   `toml:"file"`
	Argv      []string `toml:"argv"`
	Stdin     *string  `toml:"stdin"`
	StdinFile string   `toml:"stdin_file"`
	Stdout    *string  `toml:"stdout"`
	Timeout   int64    `toml:"timeout"`
}

// fileJob maps to [[job]] entries
type fileJob struct {
	Name      string   `toml:"name"`
	Make      string   `toml:"make"`
	Arguments []string `toml:"arguments"`
}

type fileRoot struct {
	TestsDir  string         `toml:"tests_dir"`
	Jobs      []fileJob      `toml:"job"`
	Testcases []fileTestcase `toml:"testcase"`
}

// Load reads the configuration file at path. Relative paths inside it
// (tests_dir, stdin_file) are resolved against the file's directory. Input
// files are loaded concurrently.
func Load(ctx context.Context, path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("failed to read configuration file: %w", err)
	}
	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Configuration{}, fmt.Errorf("failed to resolve configuration directory: %w", err)
	}
	return Parse(ctx, data, baseDir)
}

// Parse decodes a configuration document. Unknown keys are an error.
func Parse(ctx context.Context, data []byte, baseDir string) (Configuration, error) {
	var root fileRoot
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&root); err != nil {
		return Configuration{}, fmt.Errorf("failed to parse TOML: %w", err)
	}

	testsDir := root.TestsDir
	if testsDir == "" {
		testsDir = DefaultTestsDir
	}
	if !filepath.IsAbs(testsDir) {
		testsDir = filepath.Join(baseDir, testsDir)
	}

	cfg := Configuration{
		Jobs:      make([]Job, 0, len(root.Jobs)),
		Testcases: make([]Testcase, len(root.Testcases)),
		TestsDir:  testsDir,
	}

	for _, j := range root.Jobs {
		cfg.Jobs = append(cfg.Jobs, Job{
			Name:           j.Name,
			BuildCommand:   j.Make,
			BuildArguments: j.Arguments,
		})
	}

	for i, ft := range root.Testcases {
		if ft.Stdin != nil && ft.StdinFile != "" {
			return Configuration{}, fmt.Errorf("testcase %d (%q): stdin and stdin_file are mutually exclusive", i, ft.Name)
		}
	}

	store := filestore.New(baseDir)
	eg, ctx := errgroup.WithContext(ctx)
	for i, ft := range root.Testcases {
		tc := Testcase{
			Path:      ft.File,
			Name:      ft.Name,
			Argv:      ft.Argv,
			TimeoutMs: ft.Timeout,
		}
		if tc.Name == "" {
			tc.Name = ft.File
		}
		if ft.Stdin != nil {
			tc.Input = []byte(*ft.Stdin)
		}
		if ft.Stdout != nil {
			tc.ExpectedOutput = []byte(*ft.Stdout)
		}
		cfg.Testcases[i] = tc

		if ft.StdinFile == "" {
			continue
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			input, err := store.Await(ft.StdinFile)
			if err != nil {
				return fmt.Errorf("testcase %q: %w", tc.Name, err)
			}
			// shared files are handed out once per testcase
			cfg.Testcases[i].Input = append([]byte{}, input...)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Configuration{}, err
	}

	return cfg, nil
}
