package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slack-thread-dump-tap/internal/types"
)

func TestValidateFormulaAcceptsSample(t *testing.T) {
	result, err := NewFormulaValidator().ValidateFormula(t.Context(), sampleFormula())
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
}

func TestValidateFormulaRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *types.Formula)
		expect string
	}{
		{"bad name", func(f *types.Formula) { f.Name = "Slack Thread Dump" }, "invalid formula name"},
		{"long desc", func(f *types.Formula) {
			f.Desc = "Export Slack threads to text or Markdown with a description that runs well past the limit"
		}, "desc is longer than"},
		{"desc period", func(f *types.Formula) { f.Desc = "Export Slack threads." }, "must not end with a period"},
		{"homepage", func(f *types.Formula) { f.Homepage = "github.com/cheerchen" }, "homepage is not a valid"},
		{"git without branch", func(f *types.Formula) { f.Source.Branch = "" }, "require source.branch"},
		{"archive without sha", func(f *types.Formula) {
			f.Source = types.Source{URL: "https://example.com/slack-thread-dump-0.1.0.tar.gz"}
		}, "require source.sha256"},
		{"signature without key", func(f *types.Formula) { f.Source.Signature = "x.asc" }, "must be set together"},
		{"version", func(f *types.Formula) { f.Version = "0.1" }, "not a semantic version"},
		{"license", func(f *types.Formula) { f.License = "NOT-A-LICENSE" }, "not a valid SPDX"},
		{"duplicate dependency", func(f *types.Formula) {
			f.Dependencies = []types.DependencySpec{{Name: "jq"}, {Name: "jq"}}
		}, "duplicate dependency"},
		{"self dependency", func(f *types.Formula) {
			f.Dependencies = []types.DependencySpec{{Name: "slack-thread-dump"}}
		}, "depends on itself"},
		{"bad constraint", func(f *types.Formula) {
			f.Dependencies = []types.DependencySpec{{Name: "jq", Constraint: "latest"}}
		}, "invalid constraint"},
		{"escaping source", func(f *types.Formula) {
			f.Install = []types.InstallStep{{Source: "../etc/passwd"}}
		}, "must stay inside the tree"},
		{"duplicate target", func(f *types.Formula) {
			f.Install = []types.InstallStep{
				{Source: "a.sh", Target: "tool"},
				{Source: "b.sh", Target: "tool"},
			}
		}, "duplicate install target"},
		{"no install steps", func(f *types.Formula) { f.Install = nil }, "formula does not match schema"},
		{"empty test", func(f *types.Formula) { f.Test.Executable = "" }, "formula does not match schema"},
		{"unknown tag", func(f *types.Formula) {
			f.Dependencies = []types.DependencySpec{{Name: "jq", Tags: []types.DependencyTag{"runtime-ish"}}}
		}, "formula does not match schema"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formula := sampleFormula()
			tt.mutate(&formula)
			_, err := NewFormulaValidator().ValidateFormula(t.Context(), formula)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expect)
		})
	}
}

func TestValidateFormulaAcceptsLicenseExpression(t *testing.T) {
	formula := sampleFormula()
	formula.License = "MIT OR Apache-2.0"
	_, err := NewFormulaValidator().ValidateFormula(t.Context(), formula)
	require.NoError(t, err)
}

func TestValidateFormulaAuditWarnings(t *testing.T) {
	formula := sampleFormula()
	formula.Desc = "A slack-thread-dump helper"
	formula.Homepage = "http://example.com"
	result, err := NewFormulaValidator().ValidateFormula(t.Context(), formula)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"desc should not start with an article",
		"homepage should use https",
	}, result.Warnings)
}

func TestValidateDocumentRejectsUnknownField(t *testing.T) {
	doc := map[string]any{
		"name":     "slack-thread-dump",
		"desc":     "Export Slack threads to text or Markdown",
		"homepage": "https://github.com/cheerchen/slack-thread-dump",
		"source":   map[string]any{"url": "https://github.com/cheerchen/slack-thread-dump.git", "branch": "main"},
		"version":  "0.1.0",
		"license":  "MIT",
		"install":  []any{map[string]any{"source": "slack-thread-dump.sh"}},
		"test":     map[string]any{"executable": "#{bin}/slack-thread-dump"},
		"bottle":   "none",
	}
	err := NewFormulaValidator().ValidateDocument(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "formula does not match schema")

	delete(doc, "bottle")
	require.NoError(t, NewFormulaValidator().ValidateDocument(doc))
}
