package ports

import (
	"context"

	"slack-thread-dump-tap/internal/types"
)

type VerifierPort interface {
	Run(ctx context.Context, executable string, args []string) (types.VerifyResult, error)
}
