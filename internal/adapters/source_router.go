package adapters

import (
	"context"

	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/shared"
	"slack-thread-dump-tap/internal/types"
)

// SourceRouterAdapter dispatches a fetch to the adapter for the source kind.
type SourceRouterAdapter struct {
	Git     ports.SourcePort
	Dir     ports.SourcePort
	Archive ports.SourcePort
}

func NewSourceRouterAdapter(git ports.SourcePort, dir ports.SourcePort, archive ports.SourcePort) SourceRouterAdapter {
	return SourceRouterAdapter{Git: git, Dir: dir, Archive: archive}
}

func (a SourceRouterAdapter) Fetch(ctx context.Context, source types.Source, destDir string) (types.FetchedSource, error) {
	switch shared.SourceKindOf(source) {
	case types.SourceKindDir:
		return a.Dir.Fetch(ctx, source, destDir)
	case types.SourceKindArchive:
		return a.Archive.Fetch(ctx, source, destDir)
	default:
		return a.Git.Fetch(ctx, source, destDir)
	}
}

var _ ports.SourcePort = SourceRouterAdapter{}
