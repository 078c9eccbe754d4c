package cli

import (
	"fmt"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slack-thread-dump-tap/internal/core"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{
		"validate", "info", "resolve", "fetch", "install",
		"test", "uninstall", "list", "compare", "convert",
	}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestRootPersistentFlags(t *testing.T) {
	root := newRootCommand()
	flags := []string{
		"config", "log-level", "prefix", "index", "formula",
		"work-dir", "http-timeout", "http-retries", "max-download-mb", "lock-timeout",
	}
	for _, name := range flags {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
}

func TestInstallCommandFlags(t *testing.T) {
	cmd := newInstallCommand()
	flags := []string{"dry-run", "skip-verify", "skip-recommended", "require-satisfied", "verify-timeout"}
	for _, name := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestCommandArgs(t *testing.T) {
	assert.Error(t, newUninstallCommand().Args(nil, nil))
	assert.NoError(t, newUninstallCommand().Args(nil, []string{"slack-thread-dump"}))
	assert.Error(t, newCompareCommand().Args(nil, []string{"0.1.0"}))
	assert.Error(t, newValidateCommand().Args(nil, []string{"a.yaml", "b.yaml"}))
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveStrings(t *testing.T) {
	got := resolveStrings(nil, []string{"a", "b"}, "test_key", "test-flag")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestResolveBoolAndInt(t *testing.T) {
	assert.True(t, resolveBool(nil, true, "test_key", "test-flag"))
	assert.False(t, resolveBool(nil, false, "test_key", "test-flag"))
	assert.Equal(t, 42, resolveInt(nil, 42, "test_key", "test-flag"))

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("timeout", 0, "timeout")
	require.NoError(t, cmd.Flags().Set("timeout", "9"))
	assert.Equal(t, 9, resolveInt(cmd, 9, "test_key", "timeout"))
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")
	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

func TestFormulaPathPrefersArgument(t *testing.T) {
	assert.Equal(t, "other.yaml", formulaPath([]string{"other.yaml"}))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bad input"),
			expected: 2,
		},
		{
			name:     "dependency not found",
			err:      &core.DependencyNotFoundError{Name: "jq"},
			expected: 3,
		},
		{
			name:     "source unavailable",
			err:      &core.SourceUnavailableError{URL: "https://example.com/x.git", Cause: assert.AnError},
			expected: 4,
		},
		{
			name:     "install path missing",
			err:      &core.InstallPathMissingError{Paths: []string{"slack-thread-dump.sh"}},
			expected: 5,
		},
		{
			name:     "wrapped test failure",
			err:      fmt.Errorf("install: %w", &core.TestFailureError{Command: "x --version", ExitCode: 1}),
			expected: 6,
		},
		{
			name: "not found generic",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("formula is not installed"),
			expected: 7,
		},
		{
			name: "lock held",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("install prefix is locked by another process"),
			expected: 7,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "errbuilder with msg",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("something broke"),
			expected: "something broke",
		},
		{
			name:     "plain error",
			err:      assert.AnError,
			expected: assert.AnError.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDescribeStageError(t *testing.T) {
	err := &core.DependencyNotFoundError{Name: "jq"}
	assert.Equal(t, "resolve failed: "+err.Error(), describeError(err))
}
