package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slack-thread-dump-tap/internal/policies"
	"slack-thread-dump-tap/internal/types"
)

func jqIndex() *fakeIndex {
	return &fakeIndex{entries: map[string]types.IndexEntry{
		"jq": {Versions: []string{"1.6.0", "1.7.1", "1.7.0"}, Executables: []string{"jq"}},
	}}
}

func TestResolverPicksHighestVersion(t *testing.T) {
	resolver := NewDependencyResolver(jqIndex(), fakeProbe{installed: map[string]bool{"jq": true}}, policies.NewDependencyPolicy(policies.ModeInstall))
	deps, err := resolver.Resolve(t.Context(), sampleFormula())
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, types.ResolvedDependency{Name: "jq", Version: "1.7.1", Satisfied: true}, deps[0])
}

func TestResolverHonoursConstraint(t *testing.T) {
	formula := sampleFormula()
	formula.Dependencies = []types.DependencySpec{{Name: "jq", Constraint: "<1.7"}}
	resolver := NewDependencyResolver(jqIndex(), nil, policies.NewDependencyPolicy(policies.ModeInstall))
	deps, err := resolver.Resolve(t.Context(), formula)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "1.6.0", deps[0].Version)
	assert.False(t, deps[0].Satisfied)
}

func TestResolverMissingDependency(t *testing.T) {
	formula := sampleFormula()
	formula.Dependencies = []types.DependencySpec{{Name: "yq"}}
	resolver := NewDependencyResolver(jqIndex(), nil, policies.NewDependencyPolicy(policies.ModeInstall))
	_, err := resolver.Resolve(t.Context(), formula)
	require.Error(t, err)

	var depErr *DependencyNotFoundError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, "yq", depErr.Name)
}

func TestResolverIncompatibleConstraint(t *testing.T) {
	formula := sampleFormula()
	formula.Dependencies = []types.DependencySpec{{Name: "jq", Constraint: ">=2.0"}}
	resolver := NewDependencyResolver(jqIndex(), nil, policies.NewDependencyPolicy(policies.ModeInstall))
	_, err := resolver.Resolve(t.Context(), formula)

	var depErr *DependencyNotFoundError
	require.ErrorAs(t, err, &depErr)
	assert.Contains(t, depErr.Error(), "no compatible version for jq")
}

func TestResolverOptionalDependencyTolerated(t *testing.T) {
	formula := sampleFormula()
	formula.Dependencies = append(formula.Dependencies, types.DependencySpec{
		Name: "pandoc",
		Tags: []types.DependencyTag{types.DependencyTagOptional},
	})
	resolver := NewDependencyResolver(jqIndex(), nil, policies.NewDependencyPolicy(policies.ModeInstall))
	deps, err := resolver.Resolve(t.Context(), formula)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "jq", deps[0].Name)
}

func TestResolverTestDependenciesOnlyInTestMode(t *testing.T) {
	formula := sampleFormula()
	formula.Dependencies = append(formula.Dependencies, types.DependencySpec{
		Name: "bats",
		Tags: []types.DependencyTag{types.DependencyTagTest},
	})
	index := jqIndex()
	index.entries["bats"] = types.IndexEntry{Versions: []string{"1.10.0"}}

	install := NewDependencyResolver(index, nil, policies.NewDependencyPolicy(policies.ModeInstall))
	deps, err := install.Resolve(t.Context(), formula)
	require.NoError(t, err)
	assert.Len(t, deps, 1)

	test := NewDependencyResolver(index, nil, policies.NewDependencyPolicy(policies.ModeTest))
	deps, err = test.Resolve(t.Context(), formula)
	require.NoError(t, err)
	assert.Len(t, deps, 2)
}

func TestResolverRequireSatisfied(t *testing.T) {
	policy := policies.NewDependencyPolicy(policies.ModeInstall)
	policy.RequireSatisfied = true
	resolver := NewDependencyResolver(jqIndex(), fakeProbe{}, policy)
	_, err := resolver.Resolve(t.Context(), sampleFormula())

	var depErr *DependencyNotFoundError
	require.ErrorAs(t, err, &depErr)
	assert.Contains(t, depErr.Error(), "not installed")
}

func TestResolverRequiresIndex(t *testing.T) {
	resolver := NewDependencyResolver(nil, nil, policies.NewDependencyPolicy(policies.ModeInstall))
	_, err := resolver.Resolve(t.Context(), sampleFormula())
	require.Error(t, err)
}

func TestResolverRejectsFormulaNameTakenInIndex(t *testing.T) {
	index := jqIndex()
	index.entries["slack-thread-dump"] = types.IndexEntry{Versions: []string{"0.0.9"}}
	resolver := NewDependencyResolver(index, nil, policies.NewDependencyPolicy(policies.ModeInstall))

	_, err := resolver.Resolve(t.Context(), sampleFormula())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "formula name slack-thread-dump is already a package in the index")
	assert.Equal(t, []string{"slack-thread-dump"}, index.lookups)
}

func TestResolverUsesIndexScheme(t *testing.T) {
	index := &fakeIndex{entries: map[string]types.IndexEntry{
		"jq": {Scheme: types.VersionSchemeDeb, Versions: []string{"1.6-2.1ubuntu3", "1.7.1-3build1"}},
	}}
	formula := sampleFormula()
	formula.Dependencies = []types.DependencySpec{{Name: "jq", Constraint: ">=1.6"}}
	resolver := NewDependencyResolver(index, nil, policies.NewDependencyPolicy(policies.ModeInstall))
	deps, err := resolver.Resolve(t.Context(), formula)
	require.NoError(t, err)
	assert.Equal(t, "1.7.1-3build1", deps[0].Version)
}
