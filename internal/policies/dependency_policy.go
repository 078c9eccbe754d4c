package policies

import (
	"strings"

	"slack-thread-dump-tap/internal/types"
)

const (
	ModeInstall = "install"
	ModeTest    = "test"
)

// DependencyPolicy decides which depends_on tags take part in a run and
// which missing dependencies are tolerated.
type DependencyPolicy struct {
	Mode             string
	SkipRecommended  bool
	RequireSatisfied bool
}

func NewDependencyPolicy(mode string) DependencyPolicy {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized != ModeTest {
		normalized = ModeInstall
	}
	return DependencyPolicy{Mode: normalized}
}

func (p DependencyPolicy) Include(tag types.DependencyTag) bool {
	switch tag {
	case types.DependencyTagTest:
		return p.Mode == ModeTest
	case types.DependencyTagRecommended:
		return !p.SkipRecommended
	default:
		return true
	}
}

// Tolerate reports whether a dependency with this tag may be absent.
func (p DependencyPolicy) Tolerate(tag types.DependencyTag) bool {
	return tag == types.DependencyTagOptional
}
