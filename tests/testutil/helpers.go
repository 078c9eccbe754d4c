// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// LocalFormula writes a formula whose source is a local directory holding
// the fixture script, and returns the formula path and source directory.
func LocalFormula(t *testing.T, root string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "upstream")
	require.NoError(t, os.MkdirAll(source, 0o755))
	script, err := os.ReadFile(filepath.Join(root, "fixtures", "source", "slack-thread-dump.sh"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(source, "slack-thread-dump.sh"), script, 0o755))
	formula := filepath.Join(dir, "slack-thread-dump.yaml")
	require.NoError(t, os.WriteFile(formula, []byte(FormulaWithSource("url: file://"+source)), 0o644))
	return formula, source
}

// FormulaWithSource renders the slack-thread-dump formula with the given
// YAML lines as its source block.
func FormulaWithSource(sourceLines ...string) string {
	var b strings.Builder
	b.WriteString("name: slack-thread-dump\n")
	b.WriteString("desc: Export Slack threads to text or Markdown\n")
	b.WriteString("homepage: https://github.com/cheerchen/slack-thread-dump\n")
	b.WriteString("source:\n")
	for _, line := range sourceLines {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("version: 0.1.0\n")
	b.WriteString("license: MIT\n")
	b.WriteString("dependencies:\n  - name: jq\n")
	b.WriteString("install:\n  - source: slack-thread-dump.sh\n    target: slack-thread-dump\n")
	b.WriteString("test:\n  executable: \"#{bin}/slack-thread-dump\"\n  args: [\"--version\"]\n")
	return b.String()
}
