// Package dynamo runs the elastic-body step loop.
//
// Each [Simulator.Step] performs, in order:
//
//   - a pair-deduplicated Hooke's-law force pass ([ForcePass] or [ParallelForcePass])
//   - integration of forces into velocity and position ([Integrator])
//   - centroid recentering of the lattice frame
//   - reduction of the step's compression samples ([AverageCompression])
//   - publication of the reading to the latest-value slot and every [Sink]
//
// # Example
//
//	cfg := dynamo.DefaultConfig()
//	sim, _ := dynamo.New(cfg, integrators.NewSemiImplicitEuler())
//	result, _ := sim.Run(ctx, 10.0)
//
// # Thread Safety
//
// A Simulator serializes Step, Drop and Positions internally.
// CurrentAverageCompression is a lock-free read of the last published value
// and may be polled from any goroutine. Use [Ensemble] to run several
// independent lattices in parallel.
package dynamo
