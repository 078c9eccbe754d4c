package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"slack-thread-dump-tap/internal/core"
	"slack-thread-dump-tap/internal/policies"
)

func (s Service) Fetch(ctx context.Context, req FetchRequest) (FetchResult, error) {
	formula, _, err := s.loadFormula(ctx, req.FormulaPath)
	if err != nil {
		return FetchResult{}, err
	}
	workDir := strings.TrimSpace(req.WorkDir)
	if workDir == "" {
		return FetchResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("work directory is required")
	}
	pipeline := core.Pipeline{Source: s.Source, Clock: s.Clock}
	fetched, err := pipeline.Fetch(ctx, formula, workDir)
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{Source: fetched}, nil
}

// Install runs the full pipeline against a prefix. Non dry runs hold the
// prefix lock for the whole run.
func (s Service) Install(ctx context.Context, req InstallRequest) (InstallResult, error) {
	formula, _, err := s.loadFormula(ctx, req.FormulaPath)
	if err != nil {
		return InstallResult{}, err
	}
	prefix, err := requirePrefix(req.Prefix)
	if err != nil {
		return InstallResult{}, err
	}
	policy := policies.NewDependencyPolicy(policies.ModeInstall)
	policy.SkipRecommended = req.SkipRecommended
	policy.RequireSatisfied = req.RequireSatisfied
	resolver, err := s.newResolver(req.IndexPath, prefix, policy)
	if err != nil {
		return InstallResult{}, err
	}
	workDir := strings.TrimSpace(req.WorkDir)
	if workDir == "" {
		workDir = filepath.Join(prefix, "var", "tap", "work")
	}

	if !req.DryRun && s.Lock != nil {
		unlock, err := s.Lock.Lock(ctx, prefix)
		if err != nil {
			return InstallResult{}, err
		}
		defer func() {
			if err := unlock(); err != nil {
				log.Warn().Err(err).Str("prefix", prefix).Msg("failed to release prefix lock")
			}
		}()
	}

	pipeline := core.Pipeline{
		Resolver:  resolver,
		Source:    s.Source,
		Installer: s.Installer,
		Verifier:  s.Verifier,
		Receipts:  s.Receipts,
		Clock:     s.Clock,
		NewID:     s.NewID,
	}
	report, err := pipeline.Run(ctx, formula, core.PipelineOptions{
		Prefix:        prefix,
		WorkDir:       workDir,
		DryRun:        req.DryRun,
		SkipVerify:    req.SkipVerify,
		VerifyTimeout: time.Duration(req.VerifyTimeoutSec) * time.Second,
	})
	if err == nil && !req.DryRun && strings.TrimSpace(req.WorkDir) == "" {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			log.Debug().Err(rmErr).Str("dir", workDir).Msg("failed to clean work directory")
		}
	}
	return InstallResult{Report: report}, err
}
