package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slack-thread-dump-tap/tests/testutil"
)

func runTap(t *testing.T, root string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "./cmd/tap"}, args...)...)
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "GO111MODULE=on", "HOME="+t.TempDir())
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), exitErr.ExitCode()
	}
	require.NoError(t, err, string(out))
	return string(out), 0
}

func TestValidateShippedFormulaE2E(t *testing.T) {
	root := testutil.RepoRoot(t)
	out, code := runTap(t, root, "validate", "formula/slack-thread-dump.yaml")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "validated: slack-thread-dump 0.1.0")
}

func TestInstallCommandE2E(t *testing.T) {
	root := testutil.RepoRoot(t)
	formula, _ := testutil.LocalFormula(t, root)
	prefix := t.TempDir()
	common := []string{"--prefix", prefix, "--index", "fixtures/index.yaml"}

	out, code := runTap(t, root, append(common, "install", formula)...)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "installed slack-thread-dump 0.1.0")
	require.FileExists(t, filepath.Join(prefix, "bin", "slack-thread-dump"))
	require.FileExists(t, filepath.Join(prefix, "var", "tap", "receipts", "slack-thread-dump.yaml"))

	version, err := exec.Command(filepath.Join(prefix, "bin", "slack-thread-dump"), "--version").CombinedOutput()
	require.NoError(t, err)
	assert.Equal(t, "slack-thread-dump 0.1.0\n", string(version))

	out, code = runTap(t, root, append(common, "install", formula)...)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "1 unchanged")

	out, code = runTap(t, root, append(common, "list")...)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "slack-thread-dump 0.1.0")

	out, code = runTap(t, root, append(common, "uninstall", "slack-thread-dump")...)
	require.Equal(t, 0, code, out)
	assert.NoFileExists(t, filepath.Join(prefix, "bin", "slack-thread-dump"))
}

func TestInstallExitCodesE2E(t *testing.T) {
	root := testutil.RepoRoot(t)

	t.Run("missing script", func(t *testing.T) {
		formula, source := testutil.LocalFormula(t, root)
		require.NoError(t, os.Remove(filepath.Join(source, "slack-thread-dump.sh")))
		prefix := t.TempDir()
		out, code := runTap(t, root, "--prefix", prefix, "--index", "fixtures/index.yaml", "install", formula)
		assert.Equal(t, 5, code, out)
		assert.NoDirExists(t, filepath.Join(prefix, "bin"))
	})

	t.Run("unknown dependency", func(t *testing.T) {
		formula, _ := testutil.LocalFormula(t, root)
		index := filepath.Join(t.TempDir(), "index.yaml")
		require.NoError(t, os.WriteFile(index, []byte("packages: {}\n"), 0o644))
		out, code := runTap(t, root, "--prefix", t.TempDir(), "--index", index, "install", formula)
		assert.Equal(t, 3, code, out)
	})

	t.Run("invalid formula", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: Bad Name\n"), 0o644))
		out, code := runTap(t, root, "validate", path)
		assert.Equal(t, 2, code, out)
	})
}

func TestCompareCommandE2E(t *testing.T) {
	root := testutil.RepoRoot(t)
	out, code := runTap(t, root, "compare", "0.1.0", "0.2.0")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "-1")
}
