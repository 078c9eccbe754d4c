package adapters

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gofrs/flock"

	"slack-thread-dump-tap/internal/ports"
)

const defaultLockRetryDelay = 100 * time.Millisecond

// PrefixLockAdapter takes an exclusive flock on <prefix>/var/tap/.lock.
type PrefixLockAdapter struct {
	Timeout    time.Duration
	RetryDelay time.Duration
}

func NewPrefixLockAdapter(timeoutSec int) PrefixLockAdapter {
	return PrefixLockAdapter{
		Timeout:    time.Duration(timeoutSec) * time.Second,
		RetryDelay: defaultLockRetryDelay,
	}
}

func (a PrefixLockAdapter) Lock(ctx context.Context, prefix string) (func() error, error) {
	dir := filepath.Join(prefix, "var", "tap")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create lock directory").
			WithCause(err)
	}
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	delay := a.RetryDelay
	if delay <= 0 {
		delay = defaultLockRetryDelay
	}
	lock := flock.New(filepath.Join(dir, ".lock"))
	locked, err := lock.TryLockContext(ctx, delay)
	if err != nil || !locked {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("install prefix is locked by another process").
			WithCause(err)
	}
	return lock.Unlock, nil
}

var _ ports.PrefixLockPort = PrefixLockAdapter{}
