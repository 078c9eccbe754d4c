package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"

	"slack-thread-dump-tap/internal/types"
)

// preparedConstraint is a pre-parsed version constraint ready for
// repeated comparison. Exactly one of the scheme-specific fields is set.
type preparedConstraint struct {
	op  types.ConstraintOp
	sem *semver.Constraints
	deb debversion.Version
	pep pep440.Specifiers
}

// versionCache memoizes parsed version objects to avoid repeated parsing
// during constraint evaluation and sorting.
type versionCache struct {
	scheme types.VersionScheme
	sem    map[string]*semver.Version
	deb    map[string]debversion.Version
	pep    map[string]pep440.Version
	spec   map[string]pep440.Specifiers
}

func newVersionCache(scheme types.VersionScheme) *versionCache {
	return &versionCache{
		scheme: normalizeScheme(scheme),
		sem:    map[string]*semver.Version{},
		deb:    map[string]debversion.Version{},
		pep:    map[string]pep440.Version{},
		spec:   map[string]pep440.Specifiers{},
	}
}

func normalizeScheme(scheme types.VersionScheme) types.VersionScheme {
	if strings.TrimSpace(string(scheme)) == "" {
		return types.VersionSchemeSemver
	}
	return types.VersionScheme(strings.ToLower(strings.TrimSpace(string(scheme))))
}

func (c *versionCache) semVersion(value string) (*semver.Version, error) {
	if parsed, ok := c.sem[value]; ok {
		return parsed, nil
	}
	parsed, err := semver.NewVersion(value)
	if err != nil {
		return nil, err
	}
	c.sem[value] = parsed
	return parsed, nil
}

func (c *versionCache) debVersion(value string) (debversion.Version, error) {
	if parsed, ok := c.deb[value]; ok {
		return parsed, nil
	}
	parsed, err := debversion.NewVersion(value)
	if err != nil {
		return debversion.Version{}, err
	}
	c.deb[value] = parsed
	return parsed, nil
}

func (c *versionCache) pepVersion(value string) (pep440.Version, error) {
	if parsed, ok := c.pep[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.Parse(value)
	if err != nil {
		return pep440.Version{}, err
	}
	c.pep[value] = parsed
	return parsed, nil
}

func (c *versionCache) pepSpec(value string) (pep440.Specifiers, error) {
	if parsed, ok := c.spec[value]; ok {
		return parsed, nil
	}
	parsed, err := pep440.NewSpecifiers(value)
	if err != nil {
		return pep440.Specifiers{}, err
	}
	c.spec[value] = parsed
	return parsed, nil
}

// compareStrict returns -1, 0, or 1 and reports parse failures.
func (c *versionCache) compareStrict(a string, b string) (int, error) {
	switch c.scheme {
	case types.VersionSchemeSemver:
		v1, err := c.semVersion(a)
		if err != nil {
			return 0, err
		}
		v2, err := c.semVersion(b)
		if err != nil {
			return 0, err
		}
		return v1.Compare(v2), nil
	case types.VersionSchemeDeb:
		v1, err := c.debVersion(a)
		if err != nil {
			return 0, err
		}
		v2, err := c.debVersion(b)
		if err != nil {
			return 0, err
		}
		return v1.Compare(v2), nil
	case types.VersionSchemePep440:
		v1, err := c.pepVersion(a)
		if err != nil {
			return 0, err
		}
		v2, err := c.pepVersion(b)
		if err != nil {
			return 0, err
		}
		return v1.Compare(v2), nil
	default:
		return 0, unsupportedScheme(c.scheme)
	}
}

// compare is compareStrict with parse errors collapsed to 0, for sorting.
func (c *versionCache) compare(a string, b string) int {
	result, err := c.compareStrict(a, b)
	if err != nil {
		return 0
	}
	return result
}

// CompareVersions orders two version strings under the given scheme.
// An empty scheme means semver.
func CompareVersions(scheme types.VersionScheme, a string, b string) (int, error) {
	cache := newVersionCache(scheme)
	result, err := cache.compareStrict(strings.TrimSpace(a), strings.TrimSpace(b))
	if err != nil {
		if isUnsupportedScheme(err) {
			return 0, err
		}
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid %s version", cache.scheme)).
			WithCause(err)
	}
	switch {
	case result < 0:
		return -1, nil
	case result > 0:
		return 1, nil
	}
	return 0, nil
}

// ValidSemver reports whether value parses as a semantic version.
func ValidSemver(value string) bool {
	_, err := semver.StrictNewVersion(strings.TrimPrefix(strings.TrimSpace(value), "v"))
	return err == nil
}

// SortVersions returns available ordered from highest to lowest.
func SortVersions(scheme types.VersionScheme, available []string) []string {
	cache := newVersionCache(scheme)
	ordered := append([]string(nil), available...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return cache.compare(ordered[i], ordered[j]) > 0
	})
	return ordered
}

// bestCompatibleVersion selects the highest version from available that
// satisfies all of the dependency's constraints.
func bestCompatibleVersion(dep types.Dependency, scheme types.VersionScheme, available []string) (string, error) {
	if len(available) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no available versions for %s", dep.Name))
	}
	cache := newVersionCache(scheme)
	parsedConstraints, err := prepareConstraints(cache, dep.Constraints)
	if err != nil {
		return "", err
	}
	var candidates []string
	for _, version := range available {
		ok, err := satisfiesAll(cache, version, parsedConstraints)
		if err != nil {
			return "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid index version %q for %s", version, dep.Name)).
				WithCause(err)
		}
		if ok {
			candidates = append(candidates, version)
		}
	}
	if len(candidates) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("no compatible version for %s", dep.Name))
	}
	sort.Slice(candidates, func(i, j int) bool {
		return cache.compare(candidates[i], candidates[j]) > 0
	})
	return candidates[0], nil
}

func prepareConstraints(cache *versionCache, constraints []types.Constraint) ([]preparedConstraint, error) {
	var out []preparedConstraint
	for _, constraint := range constraints {
		if constraint.Op == types.ConstraintOpNone {
			continue
		}
		switch cache.scheme {
		case types.VersionSchemeSemver:
			parsed, err := semverConstraint(constraint)
			if err != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("invalid constraint for %s", constraint.Name)).
					WithCause(err)
			}
			out = append(out, preparedConstraint{op: constraint.Op, sem: parsed})
		case types.VersionSchemeDeb:
			debConstraints, err := debBounds(constraint)
			if err != nil {
				return nil, err
			}
			for _, bound := range debConstraints {
				parsed, err := cache.debVersion(bound.Version)
				if err != nil {
					return nil, errbuilder.New().
						WithCode(errbuilder.CodeInvalidArgument).
						WithMsg(fmt.Sprintf("invalid constraint for %s", constraint.Name)).
						WithCause(err)
				}
				out = append(out, preparedConstraint{op: bound.Op, deb: parsed})
			}
		case types.VersionSchemePep440:
			spec, err := cache.pepSpec(toPep440Spec(constraint))
			if err != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("invalid constraint for %s", constraint.Name)).
					WithCause(err)
			}
			out = append(out, preparedConstraint{op: constraint.Op, pep: spec})
		default:
			return nil, unsupportedScheme(cache.scheme)
		}
	}
	return out, nil
}

func satisfiesAll(cache *versionCache, version string, constraints []preparedConstraint) (bool, error) {
	if len(constraints) == 0 {
		return true, nil
	}
	switch cache.scheme {
	case types.VersionSchemeSemver:
		return satisfiesSemver(version, constraints, cache)
	case types.VersionSchemeDeb:
		return satisfiesDeb(version, constraints, cache)
	case types.VersionSchemePep440:
		return satisfiesPep440(version, constraints, cache)
	default:
		return false, unsupportedScheme(cache.scheme)
	}
}

func satisfiesSemver(version string, constraints []preparedConstraint, cache *versionCache) (bool, error) {
	v, err := cache.semVersion(version)
	if err != nil {
		return false, err
	}
	for _, constraint := range constraints {
		if !constraint.sem.Check(v) {
			return false, nil
		}
	}
	return true, nil
}

func satisfiesDeb(version string, constraints []preparedConstraint, cache *versionCache) (bool, error) {
	v, err := cache.debVersion(version)
	if err != nil {
		return false, err
	}
	for _, constraint := range constraints {
		c := constraint.deb
		switch constraint.op {
		case types.ConstraintOpEq, types.ConstraintOpEq2:
			if !v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpNe:
			if v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpGte:
			if v.LessThan(c) && !v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpLte:
			if v.GreaterThan(c) && !v.Equal(c) {
				return false, nil
			}
		case types.ConstraintOpGt:
			if !v.GreaterThan(c) {
				return false, nil
			}
		case types.ConstraintOpLt:
			if !v.LessThan(c) {
				return false, nil
			}
		default:
			return false, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unsupported constraint operator")
		}
	}
	return true, nil
}

func satisfiesPep440(version string, constraints []preparedConstraint, cache *versionCache) (bool, error) {
	parsed, err := cache.pepVersion(version)
	if err != nil {
		return false, err
	}
	for _, constraint := range constraints {
		if !constraint.pep.Check(parsed) {
			return false, nil
		}
	}
	return true, nil
}

func semverConstraint(constraint types.Constraint) (*semver.Constraints, error) {
	rendered, err := toSemverConstraint(constraint)
	if err != nil {
		return nil, err
	}
	return semver.NewConstraint(rendered)
}

// toSemverConstraint renders a constraint in Masterminds syntax. The
// compatible-release operator expands to an explicit range so that
// "~= 1.7" admits 1.8 the same way PEP 440 does.
func toSemverConstraint(constraint types.Constraint) (string, error) {
	op := string(constraint.Op)
	switch constraint.Op {
	case types.ConstraintOpEq2:
		op = "="
	case types.ConstraintOpCompat:
		upper, err := compatibleUpperBound(constraint.Version)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(">= %s, < %s", constraint.Version, upper), nil
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", op, constraint.Version)), nil
}

// debBounds rewrites a constraint into the operators satisfiesDeb knows.
func debBounds(constraint types.Constraint) ([]types.Constraint, error) {
	switch constraint.Op {
	case types.ConstraintOpEq, types.ConstraintOpEq2, types.ConstraintOpNe,
		types.ConstraintOpGte, types.ConstraintOpLte, types.ConstraintOpGt, types.ConstraintOpLt:
		return []types.Constraint{constraint}, nil
	case types.ConstraintOpCompat:
		upper, err := compatibleUpperBound(constraint.Version)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid constraint for %s", constraint.Name)).
				WithCause(err)
		}
		lower := constraint
		lower.Op = types.ConstraintOpGte
		upperBound := constraint
		upperBound.Op = types.ConstraintOpLt
		upperBound.Version = upper
		return []types.Constraint{lower, upperBound}, nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported constraint operator %q for %s", constraint.Op, constraint.Name))
	}
}

// compatibleUpperBound returns the exclusive upper bound of a
// compatible-release clause: the last release component is dropped and the
// one before it incremented ("1.7" -> "2", "1.7.1" -> "1.8"). A deb epoch
// is kept and a deb revision ignored.
func compatibleUpperBound(version string) (string, error) {
	v := strings.TrimSpace(version)
	epoch := ""
	if i := strings.Index(v, ":"); i >= 0 {
		epoch, v = v[:i+1], v[i+1:]
	}
	if i := strings.LastIndex(v, "-"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	if len(parts) < 2 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("compatible release needs at least two components: %q", version))
	}
	parts = parts[:len(parts)-1]
	last, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("compatible release must be numeric: %q", version)).
			WithCause(err)
	}
	parts[len(parts)-1] = strconv.Itoa(last + 1)
	return epoch + strings.Join(parts, "."), nil
}

func toPep440Spec(constraint types.Constraint) string {
	op := string(constraint.Op)
	switch constraint.Op {
	case types.ConstraintOpEq, types.ConstraintOpEq2:
		op = "=="
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", op, constraint.Version))
}

func unsupportedScheme(scheme types.VersionScheme) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unsupported version scheme: %s", scheme))
}

func isUnsupportedScheme(err error) bool {
	return strings.HasPrefix(errorMessage(err), "unsupported version scheme")
}
