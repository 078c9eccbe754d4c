package adapters

import (
	"os"
	"os/exec"
	"path/filepath"

	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/types"
)

// DependencyProbeAdapter looks for a dependency's executables first under
// the install prefix and then on PATH.
type DependencyProbeAdapter struct {
	Prefix   string
	LookPath func(file string) (string, error)
}

func NewDependencyProbeAdapter(prefix string) DependencyProbeAdapter {
	return DependencyProbeAdapter{Prefix: prefix, LookPath: exec.LookPath}
}

func (a DependencyProbeAdapter) Satisfied(entry types.IndexEntry, name string) bool {
	executables := entry.Executables
	if len(executables) == 0 {
		executables = []string{name}
	}
	for _, executable := range executables {
		if !a.found(executable) {
			return false
		}
	}
	return true
}

func (a DependencyProbeAdapter) found(executable string) bool {
	if a.Prefix != "" {
		info, err := os.Stat(filepath.Join(a.Prefix, string(types.InstallDirBin), executable))
		if err == nil && !info.IsDir() && info.Mode().Perm()&0o111 != 0 {
			return true
		}
	}
	lookPath := a.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	_, err := lookPath(executable)
	return err == nil
}

var _ ports.DependencyProbePort = DependencyProbeAdapter{}
