package ports

import "context"

// PrefixLockPort serializes mutating runs against one install prefix.
type PrefixLockPort interface {
	Lock(ctx context.Context, prefix string) (unlock func() error, err error)
}
