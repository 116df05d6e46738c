package flags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// TestFlagsDontSetRequired asserts that no flag is required: every one has a
// usable default.
func TestFlagsDontSetRequired(t *testing.T) {
	for _, flag := range append(GlobalFlags, RunFlags...) {
		reqFlag, ok := flag.(cli.RequiredFlag)
		require.True(t, ok)
		require.False(t, reqFlag.IsRequired(), flag.Names()[0])
	}
}

// TestUniqueFlags asserts that all flag names are unique.
func TestUniqueFlags(t *testing.T) {
	seen := make(map[string]struct{})
	for _, flag := range append(GlobalFlags, RunFlags...) {
		for _, name := range flag.Names() {
			_, dup := seen[name]
			require.False(t, dup, "duplicate flag %s", name)
			seen[name] = struct{}{}
		}
	}
}

// TestEnvVarsArePrefixed asserts every flag can be set from a CATALYST_ variable
// named after it.
func TestEnvVarsArePrefixed(t *testing.T) {
	for _, flag := range append(GlobalFlags, RunFlags...) {
		envFlag, ok := flag.(interface{ GetEnvVars() []string })
		require.True(t, ok)
		envs := envFlag.GetEnvVars()
		require.Len(t, envs, 1)

		name := flag.Names()[0]
		want := EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		require.Equal(t, want, envs[0])
	}
}
