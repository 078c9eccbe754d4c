package app

import (
	"context"
	"strings"
	"time"

	"slack-thread-dump-tap/internal/core"
	"slack-thread-dump-tap/internal/policies"
)

// Test runs the formula's smoke test against an existing install. With an
// index it first checks that runtime and test dependencies are present.
func (s Service) Test(ctx context.Context, req TestRequest) (TestResult, error) {
	formula, _, err := s.loadFormula(ctx, req.FormulaPath)
	if err != nil {
		return TestResult{}, err
	}
	prefix, err := requirePrefix(req.Prefix)
	if err != nil {
		return TestResult{}, err
	}
	if strings.TrimSpace(req.IndexPath) != "" {
		policy := policies.NewDependencyPolicy(policies.ModeTest)
		policy.RequireSatisfied = true
		resolver, err := s.newResolver(req.IndexPath, prefix, policy)
		if err != nil {
			return TestResult{}, err
		}
		if _, err := resolver.Resolve(ctx, formula); err != nil {
			return TestResult{}, err
		}
	}
	pipeline := core.Pipeline{Verifier: s.Verifier, Clock: s.Clock}
	result, err := pipeline.Verify(ctx, formula, prefix, time.Duration(req.TimeoutSec)*time.Second)
	if err != nil {
		return TestResult{Name: formula.Name, Verify: result}, err
	}
	return TestResult{Name: formula.Name, Verify: result}, nil
}
