package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slack-thread-dump-tap/internal/types"
)

func TestParseConstraint(t *testing.T) {
	tests := []struct {
		raw     string
		op      types.ConstraintOp
		name    string
		version string
	}{
		{"jq=1.7.1", types.ConstraintOpEq, "jq", "1.7.1"},
		{"jq==1.7.1", types.ConstraintOpEq2, "jq", "1.7.1"},
		{"jq>=1.6", types.ConstraintOpGte, "jq", "1.6"},
		{"jq<=1.7", types.ConstraintOpLte, "jq", "1.7"},
		{"jq>1.6", types.ConstraintOpGt, "jq", "1.6"},
		{"jq<2", types.ConstraintOpLt, "jq", "2"},
		{"jq!=1.7.0", types.ConstraintOpNe, "jq", "1.7.0"},
		{"jq~=1.7", types.ConstraintOpCompat, "jq", "1.7"},
		{"jq", types.ConstraintOpNone, "jq", ""},
	}

	for _, tt := range tests {
		constraint, err := ParseConstraint(tt.raw, "test")
		require.NoError(t, err)
		if diff := cmp.Diff(tt.op, constraint.Op); diff != "" {
			t.Fatalf("unexpected op (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(tt.name, constraint.Name); diff != "" {
			t.Fatalf("unexpected name (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(tt.version, constraint.Version); diff != "" {
			t.Fatalf("unexpected version (-want +got):\n%s", diff)
		}
	}
}

func TestParseConstraintRejectsEmpty(t *testing.T) {
	_, err := ParseConstraint("   ", "test")
	require.Error(t, err)

	_, err = ParseConstraint(">=1.0", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid constraint")
}

func TestParseConstraintRejectsShortCompatibleRelease(t *testing.T) {
	_, err := ParseConstraint("jq~=1", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid constraint")
}

func TestParseDependency(t *testing.T) {
	dep, err := ParseDependency(types.DependencySpec{
		Name:       "jq",
		Constraint: ">=1.6, <2",
	}, "formula")
	require.NoError(t, err)
	assert.Equal(t, "jq", dep.Name)
	assert.Equal(t, types.DependencyTagRuntime, dep.Tag)
	want := []types.Constraint{
		{Name: "jq", Op: types.ConstraintOpGte, Version: "1.6", Source: "formula"},
		{Name: "jq", Op: types.ConstraintOpLt, Version: "2", Source: "formula"},
	}
	if diff := cmp.Diff(want, dep.Constraints); diff != "" {
		t.Fatalf("unexpected constraints (-want +got):\n%s", diff)
	}
}

func TestParseDependencyBareName(t *testing.T) {
	dep, err := ParseDependency(types.DependencySpec{Name: "jq"}, "formula")
	require.NoError(t, err)
	assert.Empty(t, dep.Constraints)
}

func TestParseDependencyRejectsForeignName(t *testing.T) {
	_, err := ParseDependency(types.DependencySpec{Name: "jq", Constraint: "curl"}, "formula")
	require.Error(t, err)
}

func TestPrimaryTag(t *testing.T) {
	assert.Equal(t, types.DependencyTagRuntime, primaryTag(nil))
	assert.Equal(t, types.DependencyTagBuild, primaryTag([]types.DependencyTag{"build"}))
	assert.Equal(t, types.DependencyTagOptional, primaryTag([]types.DependencyTag{"build", "optional"}))
	assert.Equal(t, types.DependencyTagTest, primaryTag([]types.DependencyTag{"recommended", "TEST"}))
}
