package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/puzpuzpuz/xsync/v3"
)

// FileStore loads testcase input files relative to a base directory. Each
// file is read at most once no matter how many testcases share it, and
// zstd-compressed files (".zst") are decompressed on the way in.
type FileStore struct {
	baseDir string
	files   *xsync.MapOf[string, *storedFile]
}

type storedFile struct {
	once sync.Once
	data []byte
	err  error
}

// New creates a FileStore rooted at baseDir.
func New(baseDir string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		files:   xsync.NewMapOf[string, *storedFile](),
	}
}

// Path resolves name against the store's base directory.
func (fs *FileStore) Path(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(fs.baseDir, name)
}

// Await returns the (decompressed) contents of name, loading it if no other
// caller has. Safe for concurrent use.
func (fs *FileStore) Await(name string) ([]byte, error) {
	path := fs.Path(name)
	file, _ := fs.files.LoadOrCompute(path, func() *storedFile {
		return &storedFile{}
	})
	file.once.Do(func() {
		file.data, file.err = readFile(path)
	})
	if file.err != nil {
		return nil, file.err
	}
	return file.data, nil
}

// Loaded reports how many distinct files have been requested.
func (fs *FileStore) Loaded() int {
	return fs.files.Size()
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}
	defer f.Close()

	if filepath.Ext(path) != ".zst" {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
		}
		return data, nil
	}

	d, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer d.Close()

	data, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress input file %s: %w", path, err)
	}
	return data, nil
}
