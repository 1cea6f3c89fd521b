package upgrade

import (
	"fmt"
	"sort"
)

// Registry holds the available upgrade steps keyed by their source
// version. At most one step exists per source version, so chain
// resolution is deterministic.
type Registry struct {
	steps map[int]Step
}

// NewRegistry builds a registry from the given steps. It fails with
// ErrRegistryIntegrity if two steps share a source version, a step does
// not increase the version, or a step carries no statements.
func NewRegistry(steps []Step) (*Registry, error) {
	byFrom := make(map[int]Step, len(steps))
	for _, step := range steps {
		if step.From >= step.To {
			return nil, fmt.Errorf("step %d to %d does not increase the version: %w",
				step.From, step.To, ErrRegistryIntegrity)
		}
		if len(step.Statements) == 0 {
			return nil, fmt.Errorf("step %d to %d has no statements: %w",
				step.From, step.To, ErrRegistryIntegrity)
		}
		if prev, ok := byFrom[step.From]; ok {
			return nil, fmt.Errorf("steps %d to %d and %d to %d share a source version: %w",
				prev.From, prev.To, step.From, step.To, ErrRegistryIntegrity)
		}
		byFrom[step.From] = step
	}
	return &Registry{steps: byFrom}, nil
}

// StepFrom returns the step whose source version equals v, if any.
func (r *Registry) StepFrom(v int) (Step, bool) {
	step, ok := r.steps[v]
	return step, ok
}

// Lowest returns the smallest source version in the registry, or 0 for
// an empty registry.
func (r *Registry) Lowest() int {
	lowest := 0
	first := true
	for from := range r.steps {
		if first || from < lowest {
			lowest = from
			first = false
		}
	}
	return lowest
}

// Latest returns the highest version any step reaches, or 0 for an
// empty registry.
func (r *Registry) Latest() int {
	latest := 0
	for _, step := range r.steps {
		if step.To > latest {
			latest = step.To
		}
	}
	return latest
}

// Steps returns all steps ordered by source version.
func (r *Registry) Steps() []Step {
	out := make([]Step, 0, len(r.steps))
	for _, step := range r.steps {
		out = append(out, step)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

// BuildChain resolves the ordered sequence of steps from current to
// target. It returns an empty chain when current == target, and fails
// with ErrNoPath when target is below current (downgrades are not
// supported) or the chain has a gap before reaching target.
func (r *Registry) BuildChain(current, target int) ([]Step, error) {
	if current == target {
		return nil, nil
	}
	if target < current {
		return nil, fmt.Errorf("downgrade from %d to %d: %w", current, target, ErrNoPath)
	}
	var chain []Step
	v := current
	for v < target {
		step, ok := r.steps[v]
		if !ok {
			return nil, fmt.Errorf("no upgrade step from version %d toward %d: %w",
				v, target, ErrNoPath)
		}
		chain = append(chain, step)
		v = step.To
	}
	if v != target {
		return nil, fmt.Errorf("upgrade chain overshoots target %d at version %d: %w",
			target, v, ErrNoPath)
	}
	return chain, nil
}

// VerifyChain confirms the registry forms a single connected chain from
// its lowest source version to its highest reachable version. Shipped
// registries must pass this; a gap fails with ErrRegistryIntegrity.
func (r *Registry) VerifyChain() error {
	if len(r.steps) == 0 {
		return nil
	}
	_, err := r.BuildChain(r.Lowest(), r.Latest())
	if err != nil {
		return fmt.Errorf("upgrade chain has a gap: %w", ErrRegistryIntegrity)
	}
	return nil
}
