package adapters

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/shared"
	"slack-thread-dump-tap/internal/types"
)

type GitSourceAdapter struct {
	Binary string
}

func NewGitSourceAdapter() GitSourceAdapter {
	return GitSourceAdapter{Binary: "git"}
}

// Fetch clones the repository into destDir. A pinned revision needs full
// history for the checkout, otherwise a shallow clone of the branch is used.
func (a GitSourceAdapter) Fetch(ctx context.Context, source types.Source, destDir string) (types.FetchedSource, error) {
	repo := strings.TrimSpace(source.URL)
	if repo == "" {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("git source url is empty")
	}
	if err := os.MkdirAll(filepath.Dir(destDir), 0755); err != nil {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create work directory").
			WithCause(err)
	}

	revision := strings.TrimSpace(source.Revision)
	args := []string{"clone", "--quiet"}
	if revision == "" {
		args = append(args, "--depth", "1")
	}
	if branch := strings.TrimSpace(source.Branch); branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, repo, destDir)
	log.Debug().Str("url", repo).Str("branch", source.Branch).Msg("cloning git source")
	if _, err := a.run(ctx, "", args...); err != nil {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to clone git source").
			WithCause(err)
	}
	if revision != "" {
		if _, err := a.run(ctx, destDir, "checkout", "--quiet", revision); err != nil {
			return types.FetchedSource{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("failed to check out git revision").
				WithCause(err)
		}
	}
	head, err := a.run(ctx, destDir, "rev-parse", "HEAD")
	if err != nil {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read git revision").
			WithCause(err)
	}
	return types.FetchedSource{Dir: destDir, Kind: types.SourceKindGit, Revision: head}, nil
}

func (a GitSourceAdapter) run(ctx context.Context, dir string, args ...string) (string, error) {
	binary := a.Binary
	if binary == "" {
		binary = "git"
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", shared.CommandError(output, err)
	}
	return strings.TrimSpace(string(output)), nil
}

var _ ports.SourcePort = GitSourceAdapter{}
