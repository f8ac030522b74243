package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/springlattice/internal/config"
	"github.com/san-kum/springlattice/internal/experiment"
)

var ErrNoCandidate = errors.New("optim: no candidate completed")

// GridSearch tries every combination of parameter values and keeps the one
// minimizing a run metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if err := Apply(config.DefaultConfig(), name, 1); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Apply sets one tunable on cfg.
func Apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case "k":
		cfg.Physics.SpringConstant = v
	case "damping":
		cfg.Physics.Damping = v
	case "mass":
		cfg.Physics.Mass = v
	case "rate":
		cfg.Physics.StepRate = v
	case "spacing":
		cfg.Lattice.Spacing = v
	default:
		return fmt.Errorf("optim: unknown parameter %q", name)
	}
	return nil
}

// Search runs one experiment per grid point derived from base. Candidates
// that fail to build or stop early are skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg := *base
		cfg.DropTest.Enabled = false
		for name, v := range current {
			if err := Apply(&cfg, name, v); err != nil {
				return err
			}
		}

		exp := experiment.New(&cfg)
		if err := exp.Setup(); err != nil {
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		if len(result.Errors) > 0 {
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("optim: unknown metric %q", metricName)
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, base, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
