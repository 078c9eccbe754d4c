package adapters

import (
	"fmt"
	"os"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/shared"
	"slack-thread-dump-tap/internal/types"
)

// DefaultIndexFile is the index used when none is given, relative to the
// install prefix.
const DefaultIndexFile = "var/tap/index.yaml"

type IndexFileAdapter struct {
	Path string

	once   sync.Once
	cached map[string]types.IndexEntry
	err    error
}

func NewIndexFileAdapter(path string) *IndexFileAdapter {
	return &IndexFileAdapter{Path: path}
}

func (a *IndexFileAdapter) Lookup(name string) (types.IndexEntry, bool, error) {
	packages, err := a.load()
	if err != nil {
		return types.IndexEntry{}, false, err
	}
	entry, ok := packages[shared.NormalizePackageName(name)]
	return entry, ok, nil
}

// Names lists every package the index knows about.
func (a *IndexFileAdapter) Names() ([]string, error) {
	packages, err := a.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(packages))
	for name := range packages {
		names = append(names, name)
	}
	return names, nil
}

func (a *IndexFileAdapter) load() (map[string]types.IndexEntry, error) {
	a.once.Do(func() {
		a.cached, a.err = readIndexFile(a.Path)
	})
	return a.cached, a.err
}

func readIndexFile(path string) (map[string]types.IndexEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("package index file not found").
			WithCause(err)
	}
	var idx types.IndexFile
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid package index format").
			WithCause(err)
	}
	packages := make(map[string]types.IndexEntry, len(idx.Packages))
	for name, entry := range idx.Packages {
		if entry.Scheme == "" {
			entry.Scheme = types.VersionSchemeSemver
		}
		key := shared.NormalizePackageName(name)
		if _, dup := packages[key]; dup {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("duplicate package %s in index", key))
		}
		packages[key] = entry
	}
	return packages, nil
}

var _ ports.IndexPort = (*IndexFileAdapter)(nil)
