package ports

import "slack-thread-dump-tap/internal/types"

type InstallerPort interface {
	Install(srcDir string, prefix string, steps []types.InstallStep) (types.InstallResult, error)
	Remove(files []types.InstalledFile) error
}
