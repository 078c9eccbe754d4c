package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"slack-thread-dump-tap/internal/types"
)

// opTokens is the ordered list of constraint operators tried during
// parsing. Longer tokens must precede shorter ones to avoid false matches
// (e.g. ">=" before ">").
var opTokens = []types.ConstraintOp{
	types.ConstraintOpGte,
	types.ConstraintOpLte,
	types.ConstraintOpCompat,
	types.ConstraintOpNe,
	types.ConstraintOpEq2,
	types.ConstraintOpEq,
	types.ConstraintOpGt,
	types.ConstraintOpLt,
}

// ParseConstraint splits a raw "name>=version" string into a Constraint.
// When no operator is found the constraint is treated as a bare name
// reference with ConstraintOpNone.
func ParseConstraint(raw string, source string) (types.Constraint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Constraint{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty constraint")
	}
	for _, op := range opTokens {
		if strings.Contains(raw, string(op)) {
			parts := strings.SplitN(raw, string(op), 2)
			name := strings.TrimSpace(parts[0])
			version := strings.TrimSpace(parts[1])
			if name == "" || version == "" {
				return types.Constraint{}, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("invalid constraint: %s", raw))
			}
			if op == types.ConstraintOpCompat {
				if _, err := compatibleUpperBound(version); err != nil {
					return types.Constraint{}, errbuilder.New().
						WithCode(errbuilder.CodeInvalidArgument).
						WithMsg(fmt.Sprintf("invalid constraint: %s", raw)).
						WithCause(err)
				}
			}
			return types.Constraint{
				Name:    name,
				Op:      op,
				Version: version,
				Source:  source,
			}, nil
		}
	}
	return types.Constraint{
		Name:    raw,
		Op:      types.ConstraintOpNone,
		Version: "",
		Source:  source,
	}, nil
}

// ParseDependency turns a depends_on entry into a typed Dependency. The
// constraint field may hold several comma separated requirements
// (">=1.6, <2").
func ParseDependency(spec types.DependencySpec, source string) (types.Dependency, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return types.Dependency{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("dependency name must not be empty")
	}
	dep := types.Dependency{Name: name, Tag: primaryTag(spec.Tags)}
	for _, piece := range strings.Split(spec.Constraint, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		constraint, err := ParseConstraint(name+piece, source)
		if err != nil {
			return types.Dependency{}, err
		}
		if constraint.Op == types.ConstraintOpNone || constraint.Name != name {
			return types.Dependency{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid constraint for %s: %s", name, piece))
		}
		dep.Constraints = append(dep.Constraints, constraint)
	}
	return dep, nil
}

// primaryTag picks the tag that decides when a dependency is needed.
// Optional wins over everything, then build, test, recommended.
func primaryTag(tags []types.DependencyTag) types.DependencyTag {
	rank := map[types.DependencyTag]int{
		types.DependencyTagOptional:    4,
		types.DependencyTagBuild:       3,
		types.DependencyTagTest:        2,
		types.DependencyTagRecommended: 1,
	}
	best := types.DependencyTagRuntime
	for _, tag := range tags {
		normalized := types.DependencyTag(strings.ToLower(strings.TrimSpace(string(tag))))
		if rank[normalized] > rank[best] {
			best = normalized
		}
	}
	return best
}
