package ports

import "slack-thread-dump-tap/internal/types"

// IndexPort answers which versions of a package the index knows about.
// A package absent from the index returns found=false with no error.
type IndexPort interface {
	Lookup(name string) (entry types.IndexEntry, found bool, err error)
}

// DependencyProbePort reports whether a resolved dependency is already
// present on the host.
type DependencyProbePort interface {
	Satisfied(entry types.IndexEntry, name string) bool
}
