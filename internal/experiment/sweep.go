package experiment

import (
	"context"

	"github.com/san-kum/springlattice/internal/config"
	"github.com/san-kum/springlattice/internal/dynamo"
)

type SweepPoint struct {
	SpringConstant float64
	Result         *dynamo.Result
}

// Err is the failure that cut this body's run short, or nil for a full run.
func (p SweepPoint) Err() error {
	if p.Result == nil || len(p.Result.Errors) == 0 {
		return nil
	}
	return p.Result.Errors[0]
}

// Sweep runs one independent body per spring constant concurrently. Drop
// tests are not armed in sweeps.
func Sweep(ctx context.Context, base *config.Config, springConstants []float64) ([]SweepPoint, error) {
	factories := make([]func() (*dynamo.Simulator, error), len(springConstants))
	for i, k := range springConstants {
		cfg := *base
		cfg.Physics.SpringConstant = k
		cfg.DropTest.Enabled = false
		factories[i] = func() (*dynamo.Simulator, error) {
			e := New(&cfg)
			if err := e.Setup(); err != nil {
				return nil, err
			}
			return e.Simulator(), nil
		}
	}

	results, err := dynamo.NewEnsemble(factories...).Run(ctx, base.Duration)
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, len(results))
	for i, r := range results {
		points[i] = SweepPoint{SpringConstant: springConstants[i], Result: r}
	}
	return points, nil
}
