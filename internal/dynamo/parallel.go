package dynamo

import (
	"context"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springlattice/internal/lattice"
)

// Ensemble runs independent simulators concurrently. Simulators share no state.
type Ensemble struct {
	factories []func() (*Simulator, error)
}

func NewEnsemble(factories ...func() (*Simulator, error)) *Ensemble {
	return &Ensemble{factories: factories}
}

// Run builds every member and runs it for duration seconds of simulated time.
// The first error, in member order, is returned.
func (e *Ensemble) Run(ctx context.Context, duration float64) ([]*Result, error) {
	results := make([]*Result, len(e.factories))
	errs := make([]error, len(e.factories))

	var wg sync.WaitGroup
	for i := range e.factories {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s, err := e.factories[idx]()
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, duration)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// ParallelFor executes fn over [0, n) split across up to workers goroutines.
func ParallelFor(n, workers, minChunk int, fn func(worker, start, end int)) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if n <= minChunk || workers <= 1 {
		fn(0, 0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(id, s, e int) {
			defer wg.Done()
			fn(id, s, e)
		}(w, start, end)
	}

	wg.Wait()
}

// ParallelForcePass splits the force walk across workers. Two workers can
// reach the same neighbor, so each one accumulates into a private force
// buffer; after every worker finishes the buffers are summed onto the masses.
// A pair is owned by its lower index, which selects the same pairs, in the
// same order, as the sequential processed-set walk.
type ParallelForcePass struct {
	workers  int
	minChunk int

	buffers    [][]mgl64.Vec3
	samples    [][]float64
	neighbors  [][]lattice.Neighbor
	degenerate []int
	merged     []float64
}

func NewParallelForcePass(workers int) *ParallelForcePass {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &ParallelForcePass{workers: workers, minChunk: 64}
}

func (p *ParallelForcePass) ensure(n int) {
	if len(p.buffers) != p.workers || (len(p.buffers) > 0 && len(p.buffers[0]) != n) {
		p.buffers = make([][]mgl64.Vec3, p.workers)
		for i := range p.buffers {
			p.buffers[i] = make([]mgl64.Vec3, n)
		}
		p.samples = make([][]float64, p.workers)
		p.neighbors = make([][]lattice.Neighbor, p.workers)
		p.degenerate = make([]int, p.workers)
	}
}

func (p *ParallelForcePass) Degenerate() int {
	total := 0
	for _, d := range p.degenerate {
		total += d
	}
	return total
}

func (p *ParallelForcePass) Run(l *lattice.Lattice, topo lattice.Topology, k float64) []float64 {
	points := l.Points()
	p.ensure(len(points))
	for w := range p.buffers {
		clear(p.buffers[w])
		p.samples[w] = p.samples[w][:0]
		p.degenerate[w] = 0
	}

	ParallelFor(len(points), p.workers, p.minChunk, func(w, start, end int) {
		buf := p.buffers[w]
		for i := start; i < end; i++ {
			if !points[i].Live {
				continue
			}
			p.neighbors[w] = topo.AppendNeighbors(p.neighbors[w][:0], l.CoordOf(i))
			for _, n := range p.neighbors[w] {
				if n.Index < i || !points[n.Index].Live {
					continue
				}
				force, ratio, degenerate := springForce(points[i].Position, points[n.Index].Position, n.RestLength, k)
				if degenerate {
					p.degenerate[w]++
				}
				buf[i] = buf[i].Add(force)
				buf[n.Index] = buf[n.Index].Sub(force)
				p.samples[w] = append(p.samples[w], ratio)
			}
		}
	})

	p.merged = p.merged[:0]
	for i := range points {
		var f mgl64.Vec3
		for w := range p.buffers {
			f = f.Add(p.buffers[w][i])
		}
		points[i].Force = f
	}
	for w := range p.samples {
		p.merged = append(p.merged, p.samples[w]...)
	}
	return p.merged
}
