package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/springlattice/internal/dynamo"
	"github.com/san-kum/springlattice/internal/integrators"
	"github.com/san-kum/springlattice/internal/metrics"
)

// StabilityThreshold is the average compression above which the body is
// considered to be tearing.
const StabilityThreshold = 1.0

type Registry struct {
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["symplectic"] = func() dynamo.Integrator { return integrators.NewSemiImplicitEuler() }

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics is the run-level set attached to every experiment.
func (r *Registry) DefaultMetrics(cfg dynamo.Config) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewMeanCompression(),
		metrics.NewPeakCompression(),
		metrics.NewEnergyDrift(cfg.SpringConstant, cfg.Mass),
		metrics.NewStability(StabilityThreshold),
	}
}
