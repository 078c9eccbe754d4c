package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"slack-thread-dump-tap/internal/adapters"
	"slack-thread-dump-tap/internal/core"
	"slack-thread-dump-tap/internal/policies"
)

func (s Service) Resolve(ctx context.Context, req ResolveRequest) (ResolveResult, error) {
	formula, _, err := s.loadFormula(ctx, req.FormulaPath)
	if err != nil {
		return ResolveResult{}, err
	}
	policy := policies.NewDependencyPolicy(req.Mode)
	policy.SkipRecommended = req.SkipRecommended
	policy.RequireSatisfied = req.RequireSatisfied
	resolver, err := s.newResolver(req.IndexPath, req.Prefix, policy)
	if err != nil {
		return ResolveResult{}, err
	}
	deps, err := resolver.Resolve(ctx, formula)
	if err != nil {
		return ResolveResult{}, err
	}
	return ResolveResult{Name: formula.Name, Version: formula.Version, Dependencies: deps}, nil
}

func (s Service) newResolver(indexPath string, prefix string, policy policies.DependencyPolicy) (core.DependencyResolver, error) {
	path := strings.TrimSpace(indexPath)
	if path == "" && strings.TrimSpace(prefix) != "" {
		path = filepath.Join(strings.TrimSpace(prefix), filepath.FromSlash(adapters.DefaultIndexFile))
	}
	if path == "" {
		return core.DependencyResolver{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package index file is required")
	}
	resolver := core.NewDependencyResolver(s.Index(path), nil, policy)
	if s.Probe != nil {
		resolver.Probe = s.Probe(strings.TrimSpace(prefix))
	}
	return resolver, nil
}
