package xdg

import (
	"os"
	"path/filepath"
)

// Dirs holds the XDG base directories catalyst searches for configuration.
type Dirs struct {
	configHome string
	configDirs []string
}

// New reads XDG_CONFIG_HOME and XDG_CONFIG_DIRS, falling back to the
// defaults of the XDG Base Directory Specification.
func New() *Dirs {
	d := &Dirs{}

	d.configHome = os.Getenv("XDG_CONFIG_HOME")
	if d.configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv("HOME")
		}
		if homeDir != "" {
			d.configHome = filepath.Join(homeDir, ".config")
		}
	}

	configDirsEnv := os.Getenv("XDG_CONFIG_DIRS")
	if configDirsEnv == "" {
		d.configDirs = []string{"/etc/xdg"}
	} else {
		d.configDirs = filepath.SplitList(configDirsEnv)
	}
	return d
}

// ConfigDirs returns the preference-ordered base directories for
// configuration files.
func (d *Dirs) ConfigDirs() []string {
	if d.configHome == "" {
		return d.configDirs
	}
	return append([]string{d.configHome}, d.configDirs...)
}

// FindConfig returns the first existing appName/file below the config dirs.
func (d *Dirs) FindConfig(appName, file string) (string, bool) {
	for _, dir := range d.ConfigDirs() {
		path := filepath.Join(dir, appName, file)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}
