package shared

import (
	"path/filepath"
	"strings"

	"slack-thread-dump-tap/internal/types"
)

var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar.xz", ".txz", ".tar"}

// SourceKindOf classifies a source location. Archive suffixes win; local
// paths are copied unless a branch asks for a git checkout.
func SourceKindOf(source types.Source) types.SourceKind {
	raw := strings.TrimSpace(source.URL)
	lower := strings.ToLower(raw)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return types.SourceKindArchive
		}
	}
	local := strings.HasPrefix(lower, "file://") ||
		(!strings.Contains(lower, "://") && !strings.HasPrefix(lower, "git@"))
	if local && strings.TrimSpace(source.Branch) == "" && strings.TrimSpace(source.Revision) == "" {
		return types.SourceKindDir
	}
	return types.SourceKindGit
}

// LocalPath strips a file:// scheme from a local source location.
func LocalPath(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(trimmed), "file://") {
		trimmed = trimmed[len("file://"):]
	}
	return filepath.FromSlash(trimmed)
}
