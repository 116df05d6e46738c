package environment

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Files that
// do not exist are skipped. With no arguments ".env" is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("failed to load %s: %w", f, err)
	}
	return nil
}
