package adapters

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"slack-thread-dump-tap/internal/core"
	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/shared"
	"slack-thread-dump-tap/internal/types"
)

// FileInstallerAdapter places install-step files under a prefix. Every
// changed file is staged next to its target first and only renamed into
// place once all steps have staged cleanly.
type FileInstallerAdapter struct{}

func NewFileInstallerAdapter() FileInstallerAdapter {
	return FileInstallerAdapter{}
}

type stagedFile struct {
	temp   string
	target string
}

func (a FileInstallerAdapter) Install(srcDir string, prefix string, steps []types.InstallStep) (types.InstallResult, error) {
	if missing := core.MissingInstallSources(srcDir, steps); len(missing) > 0 {
		return types.InstallResult{}, &core.InstallPathMissingError{Paths: missing}
	}
	var result types.InstallResult
	var staged []stagedFile
	cleanup := func() {
		for _, file := range staged {
			_ = os.Remove(file.temp)
		}
	}
	for _, step := range steps {
		mode, err := core.ParseMode(step.Mode)
		if err != nil {
			cleanup()
			return types.InstallResult{}, err
		}
		source := filepath.Join(srcDir, filepath.FromSlash(step.Source))
		target := filepath.Join(core.PrefixDir(prefix, core.InstallDirOf(step)), core.InstallTarget(step))
		sum, err := shared.FileSHA256(source)
		if err != nil {
			cleanup()
			return types.InstallResult{}, installError("failed to hash install source", err)
		}
		file := types.InstalledFile{Path: target, SHA256: sum, Mode: fmt.Sprintf("%04o", mode)}
		if existing, err := shared.FileSHA256(target); err == nil && existing == sum {
			if err := os.Chmod(target, fs.FileMode(mode)); err != nil {
				cleanup()
				return types.InstallResult{}, installError("failed to set file mode", err)
			}
			log.Debug().Str("path", target).Msg("install target unchanged")
			result.Unchanged++
			result.Files = append(result.Files, file)
			continue
		}
		temp, err := stageFile(source, target, fs.FileMode(mode))
		if err != nil {
			cleanup()
			return types.InstallResult{}, installError("failed to stage install file", err)
		}
		staged = append(staged, stagedFile{temp: temp, target: target})
		result.Files = append(result.Files, file)
	}
	for i, file := range staged {
		if err := os.Rename(file.temp, file.target); err != nil {
			for _, rest := range staged[i:] {
				_ = os.Remove(rest.temp)
			}
			return types.InstallResult{}, installError("failed to place install file", err)
		}
		log.Debug().Str("path", file.target).Msg("installed file")
	}
	return result, nil
}

func (a FileInstallerAdapter) Remove(files []types.InstalledFile) error {
	var errs []error
	for _, file := range files {
		if err := os.Remove(file.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return installError("failed to remove installed files", errors.Join(errs...))
	}
	return nil
}

func stageFile(source string, target string, mode fs.FileMode) (string, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	in, err := os.Open(source)
	if err != nil {
		return "", err
	}
	defer in.Close()
	out, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	if err := os.Chmod(out.Name(), mode); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

func installError(msg string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg).
		WithCause(err)
}

var _ ports.InstallerPort = FileInstallerAdapter{}
