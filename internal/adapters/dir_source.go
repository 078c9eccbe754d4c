package adapters

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/shared"
	"slack-thread-dump-tap/internal/types"
)

// DirSourceAdapter copies a local source tree, skipping .git and the
// destination itself when it lies inside the tree.
type DirSourceAdapter struct{}

func NewDirSourceAdapter() DirSourceAdapter {
	return DirSourceAdapter{}
}

func (a DirSourceAdapter) Fetch(ctx context.Context, source types.Source, destDir string) (types.FetchedSource, error) {
	root := shared.LocalPath(source.URL)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fs.ErrInvalid
		}
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("source directory not found").
			WithCause(err)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid source directory").
			WithCause(err)
	}
	// The work dir may live inside the source tree (url: . with a local prefix).
	skip, err := filepath.Abs(destDir)
	if err != nil {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid work directory").
			WithCause(err)
	}
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if entry.IsDir() && (entry.Name() == ".git" || path == skip) {
			return filepath.SkipDir
		}
		target := filepath.Join(destDir, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode().Perm())
	})
	if err != nil {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to copy source directory").
			WithCause(err)
	}
	return types.FetchedSource{Dir: destDir, Kind: types.SourceKindDir}, nil
}

func copyFile(src string, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

var _ ports.SourcePort = DirSourceAdapter{}
