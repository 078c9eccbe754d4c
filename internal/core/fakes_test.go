package core

import (
	"context"
	"os"
	"path/filepath"

	"slack-thread-dump-tap/internal/types"
)

type fakeIndex struct {
	entries map[string]types.IndexEntry
	lookups []string
}

func (f *fakeIndex) Lookup(name string) (types.IndexEntry, bool, error) {
	f.lookups = append(f.lookups, name)
	entry, ok := f.entries[name]
	return entry, ok, nil
}

type fakeProbe struct {
	installed map[string]bool
}

func (f fakeProbe) Satisfied(_ types.IndexEntry, name string) bool {
	return f.installed[name]
}

// fakeSource writes files into the destination tree instead of fetching.
type fakeSource struct {
	files map[string]string
	err   error
	calls int
}

func (f *fakeSource) Fetch(_ context.Context, source types.Source, destDir string) (types.FetchedSource, error) {
	f.calls++
	if f.err != nil {
		return types.FetchedSource{}, f.err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return types.FetchedSource{}, err
	}
	for name, content := range f.files {
		path := filepath.Join(destDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return types.FetchedSource{}, err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return types.FetchedSource{}, err
		}
	}
	return types.FetchedSource{Dir: destDir, Kind: types.SourceKindDir, Revision: "abc123"}, nil
}

type fakeInstaller struct {
	calls int
}

func (f *fakeInstaller) Install(srcDir string, prefix string, steps []types.InstallStep) (types.InstallResult, error) {
	f.calls++
	var result types.InstallResult
	for _, step := range steps {
		dest := filepath.Join(PrefixDir(prefix, InstallDirOf(step)), InstallTarget(step))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return types.InstallResult{}, err
		}
		if err := os.WriteFile(dest, []byte("#!/bin/sh\n"), 0o755); err != nil {
			return types.InstallResult{}, err
		}
		result.Files = append(result.Files, types.InstalledFile{Path: dest, Mode: "0755"})
	}
	return result, nil
}

func (f *fakeInstaller) Remove(_ []types.InstalledFile) error { return nil }

type fakeVerifier struct {
	result     types.VerifyResult
	err        error
	executable string
	args       []string
}

func (f *fakeVerifier) Run(_ context.Context, executable string, args []string) (types.VerifyResult, error) {
	f.executable = executable
	f.args = args
	return f.result, f.err
}

type fakeReceipts struct {
	receipts map[string]types.Receipt
}

func newFakeReceipts() *fakeReceipts {
	return &fakeReceipts{receipts: map[string]types.Receipt{}}
}

func (f *fakeReceipts) WriteReceipt(_ string, receipt types.Receipt) error {
	f.receipts[receipt.Name] = receipt
	return nil
}

func (f *fakeReceipts) ReadReceipt(_ string, name string) (types.Receipt, bool, error) {
	receipt, ok := f.receipts[name]
	return receipt, ok, nil
}

func (f *fakeReceipts) ListReceipts(_ string) ([]types.Receipt, error) {
	var out []types.Receipt
	for _, receipt := range f.receipts {
		out = append(out, receipt)
	}
	return out, nil
}

func (f *fakeReceipts) DeleteReceipt(_ string, name string) error {
	delete(f.receipts, name)
	return nil
}

func sampleFormula() types.Formula {
	return types.Formula{
		Name:     "slack-thread-dump",
		Desc:     "Export Slack threads to text or Markdown",
		Homepage: "https://github.com/cheerchen/slack-thread-dump",
		Source: types.Source{
			URL:    "https://github.com/cheerchen/slack-thread-dump.git",
			Branch: "main",
		},
		Version:      "0.1.0",
		License:      "MIT",
		Dependencies: []types.DependencySpec{{Name: "jq"}},
		Install: []types.InstallStep{{
			Source: "slack-thread-dump.sh",
			Target: "slack-thread-dump",
		}},
		Test: types.TestCommand{
			Executable: "#{bin}/slack-thread-dump",
			Args:       []string{"--version"},
		},
	}
}
