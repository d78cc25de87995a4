package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagescope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootCommandSurface(t *testing.T) {
	rootCmd := NewRootCommand()

	for _, name := range []string{"config", "log-level", "headless"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing persistent flag %q", name)
	}

	subcommands := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		subcommands[c.Name()] = true
	}
	for _, name := range []string{"analyze", "resolve", "version"} {
		assert.True(t, subcommands[name], "missing subcommand %q", name)
	}
}

func TestRootCommandNoArgs(t *testing.T) {
	rootCmd := NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--config", writeTestConfig(t, "")})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "pagescope loads a page in a real browser")
}

func TestRootCommandFlagPlumbing(t *testing.T) {
	path := writeTestConfig(t, "logger:\n  level: debug\nbrowser:\n  headless: true\n")

	rootCmd := NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--config", path, "--log-level", "warn", "--headless=false", "version"})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "pagescope "+Version)

	require.NotNil(t, appConfig)
	assert.Equal(t, "warn", appConfig.Logger().Level, "flag must override the file level")
	assert.False(t, appConfig.Browser().Headless, "explicit --headless=false must override the file")
}

func TestRootCommandHeadlessDefaultDoesNotOverride(t *testing.T) {
	path := writeTestConfig(t, "browser:\n  headless: false\n")

	rootCmd := NewRootCommand()
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"--config", path, "version"})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	require.NotNil(t, appConfig)
	assert.False(t, appConfig.Browser().Headless, "an unset flag keeps the file value")
}

func TestRootCommandRejectsBadConfig(t *testing.T) {
	path := writeTestConfig(t, "logger:\n  format: xml\n")

	rootCmd := NewRootCommand()
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"--config", path, "version"})

	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger.format")
}
