package main

import (
	"os"

	"github.com/programme-lv/catalyst/internal/flags"
	"github.com/programme-lv/catalyst/internal/xdg"
	"github.com/urfave/cli/v3"
)

// xdgConfigFile is looked up below the XDG config dirs, as catalyst/config.toml.
const xdgConfigFile = "config.toml"

// configPath is the --config value when given; otherwise the default file in
// the working directory, or the first XDG configuration found.
func configPath(cmd *cli.Command) string {
	path := cmd.String(flags.Config.Name)
	if cmd.IsSet(flags.Config.Name) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if found, ok := xdg.New().FindConfig("catalyst", xdgConfigFile); ok {
		return found
	}
	return path
}
