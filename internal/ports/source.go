package ports

import (
	"context"

	"slack-thread-dump-tap/internal/types"
)

// SourcePort materializes a formula source into destDir.
type SourcePort interface {
	Fetch(ctx context.Context, source types.Source, destDir string) (types.FetchedSource, error)
}
