package core

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"slack-thread-dump-tap/internal/policies"
	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/types"
)

type DependencyResolver struct {
	Index  ports.IndexPort
	Probe  ports.DependencyProbePort
	Policy policies.DependencyPolicy
}

func NewDependencyResolver(index ports.IndexPort, probe ports.DependencyProbePort, policy policies.DependencyPolicy) DependencyResolver {
	return DependencyResolver{
		Index:  index,
		Probe:  probe,
		Policy: policy,
	}
}

// Resolve picks an index version for every dependency the policy keeps.
// It performs no network access and runs before the source is fetched.
func (r DependencyResolver) Resolve(ctx context.Context, formula types.Formula) ([]types.ResolvedDependency, error) {
	if r.Index == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("resolver requires an index port")
	}
	_, taken, err := r.Index.Lookup(formula.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeAlreadyExists).
			WithMsg(fmt.Sprintf("formula name %s is already a package in the index", formula.Name))
	}
	var resolved []types.ResolvedDependency
	for _, spec := range formula.Dependencies {
		dep, err := ParseDependency(spec, formula.Name)
		if err != nil {
			return nil, err
		}
		if !r.Policy.Include(dep.Tag) {
			log.Ctx(ctx).Debug().Str("dependency", dep.Name).Str("tag", string(dep.Tag)).Msg("dependency skipped by policy")
			continue
		}
		entry, found, err := r.Index.Lookup(dep.Name)
		if err != nil {
			return nil, err
		}
		if !found {
			if r.Policy.Tolerate(dep.Tag) {
				log.Ctx(ctx).Warn().Str("dependency", dep.Name).Msg("optional dependency missing from index")
				continue
			}
			return nil, &DependencyNotFoundError{Name: dep.Name}
		}
		version, err := bestCompatibleVersion(dep, entry.Scheme, entry.Versions)
		if err != nil {
			if r.Policy.Tolerate(dep.Tag) {
				log.Ctx(ctx).Warn().Str("dependency", dep.Name).Err(err).Msg("optional dependency unresolvable")
				continue
			}
			return nil, &DependencyNotFoundError{Name: dep.Name, Cause: err}
		}
		satisfied := r.Probe != nil && r.Probe.Satisfied(entry, dep.Name)
		if !satisfied && r.Policy.RequireSatisfied && !r.Policy.Tolerate(dep.Tag) {
			return nil, &DependencyNotFoundError{
				Name: dep.Name,
				Cause: errbuilder.New().
					WithCode(errbuilder.CodeFailedPrecondition).
					WithMsg("dependency is not installed"),
			}
		}
		log.Ctx(ctx).Debug().
			Str("dependency", dep.Name).
			Str("version", version).
			Bool("satisfied", satisfied).
			Msg("dependency resolved")
		resolved = append(resolved, types.ResolvedDependency{
			Name:      dep.Name,
			Version:   version,
			Tag:       dep.Tag,
			Satisfied: satisfied,
		})
	}
	return resolved, nil
}
