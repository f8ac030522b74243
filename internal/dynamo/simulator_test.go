package dynamo_test

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springlattice/internal/dynamo"
	"github.com/san-kum/springlattice/internal/integrators"
	"github.com/san-kum/springlattice/internal/lattice"
)

type recordingSink struct {
	mu       sync.Mutex
	readings []dynamo.Reading
}

func (r *recordingSink) Publish(rd dynamo.Reading) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings = append(r.readings, rd)
}

func (r *recordingSink) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.readings)
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string                              { return "count" }
func (c *countingMetric) Observe(*lattice.Lattice, dynamo.Reading) { c.n++ }
func (c *countingMetric) Value() float64                            { return float64(c.n) }
func (c *countingMetric) Reset()                                    { c.n = 0 }

// liveObserver records the live count each step sees.
type liveObserver struct{ live []int }

func (o *liveObserver) OnStep(l *lattice.Lattice, r dynamo.Reading) {
	o.live = append(o.live, l.LiveCount())
}

// stretchX displaces every mass by frac·spacing per lattice step along x.
func stretchX(l *lattice.Lattice, frac float64) {
	for i := 0; i < l.Len(); i++ {
		c := l.CoordOf(i)
		l.Displace(c, mgl64.Vec3{frac * float64(c.X) * l.Spacing(), 0, 0})
	}
}

func newSim(cfg dynamo.Config, opts ...dynamo.Option) *dynamo.Simulator {
	sim, err := dynamo.New(cfg, integrators.NewSemiImplicitEuler(), opts...)
	Expect(err).NotTo(HaveOccurred())
	return sim
}

var _ = Describe("Simulator", func() {
	var cfg dynamo.Config

	BeforeEach(func() {
		cfg = dynamo.DefaultConfig()
		cfg.Size = 3
		cfg.Spacing = 1.0
		cfg.SpringConstant = 10.0
	})

	Describe("construction", func() {
		DescribeTable("rejects invalid configuration",
			func(mutate func(*dynamo.Config)) {
				mutate(&cfg)
				sim, err := dynamo.New(cfg, integrators.NewSemiImplicitEuler())
				Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))
				Expect(sim).To(BeNil())
			},
			Entry("zero size", func(c *dynamo.Config) { c.Size = 0 }),
			Entry("zero spacing", func(c *dynamo.Config) { c.Spacing = 0 }),
			Entry("zero step rate", func(c *dynamo.Config) { c.StepRate = 0 }),
			Entry("zero mass", func(c *dynamo.Config) { c.Mass = 0 }),
			Entry("negative damping", func(c *dynamo.Config) { c.Damping = -1 }),
			Entry("NaN spring constant", func(c *dynamo.Config) { c.SpringConstant = math.NaN() }),
		)

		It("rejects a nil integrator", func() {
			_, err := dynamo.New(cfg, nil)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))
		})
	})

	Describe("a body at rest", func() {
		It("publishes exactly zero and does not move", func() {
			sim := newSim(cfg)
			before := sim.Positions()

			r, err := sim.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(r.AverageCompression).To(Equal(0.0))
			Expect(r.Samples).To(Equal(158))
			Expect(sim.CurrentAverageCompression()).To(Equal(0.0))
			for _, s := range sim.Samples() {
				Expect(s).To(Equal(0.0))
			}

			after := sim.Positions()
			Expect(after).To(HaveLen(len(before)))
			for i := range before {
				Expect(after[i].Position.ApproxEqualThreshold(before[i].Position, 1e-12)).To(BeTrue())
			}
		})
	})

	Describe("a single-mass lattice", func() {
		It("has no links and reads zero", func() {
			cfg.Size = 1
			sim := newSim(cfg)

			r, err := sim.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Samples).To(BeZero())
			Expect(r.AverageCompression).To(BeZero())
			Expect(math.IsNaN(sim.CurrentAverageCompression())).To(BeFalse())
		})
	})

	Describe("a lattice stretched 10% along x", func() {
		var sim *dynamo.Simulator

		BeforeEach(func() {
			sim = newSim(cfg)
			stretchX(sim.Lattice(), 0.1)
		})

		It("reports 0.1 on every x-axis link", func() {
			_, err := sim.Step()
			Expect(err).NotTo(HaveOccurred())

			l := sim.Lattice()
			samples := sim.Samples()
			Expect(samples).To(HaveLen(158))

			xLinks := 0
			idx := 0
			for i := 0; i < l.Len(); i++ {
				for _, n := range l.Topology().NeighborsOf(l.CoordOf(i)) {
					if n.Index < i {
						continue
					}
					o := n.Coord
					c := l.CoordOf(i)
					if n.Class == lattice.Axis && o.X != c.X {
						Expect(samples[idx]).To(BeNumerically("~", 0.1, 1e-12))
						xLinks++
					}
					idx++
				}
			}
			Expect(xLinks).To(Equal(18))
		})

		It("aggregates to the link-count weighted mean", func() {
			r, err := sim.Step()
			Expect(err).NotTo(HaveOccurred())

			face := math.Sqrt(1.1*1.1+1)/math.Sqrt2 - 1
			space := math.Sqrt(1.1*1.1+2)/math.Sqrt(3) - 1
			// 18 stretched x-axis links, 48 face diagonals in the xy and xz
			// planes, 32 space diagonals; the remaining 60 links are unchanged.
			want := (18*0.1 + 48*face + 32*space) / 158

			Expect(r.AverageCompression).To(BeNumerically("~", want, 1e-12))
			Expect(r.AverageCompression).To(BeNumerically(">", 0))
			Expect(r.AverageCompression).To(BeNumerically("<", 0.1))
			Expect(sim.CurrentAverageCompression()).To(Equal(r.AverageCompression))
		})

		It("pulls the body back together", func() {
			first, err := sim.Step()
			Expect(err).NotTo(HaveOccurred())
			var next dynamo.Reading
			for i := 0; i < 5; i++ {
				next, err = sim.Step()
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(next.AverageCompression).To(BeNumerically("<", first.AverageCompression))
		})
	})

	Describe("recentering", func() {
		It("keeps the frame on the centroid while the body moves", func() {
			cfg.Gravity = mgl64.Vec3{0, -9.81, 0}
			sim := newSim(cfg)

			for i := 0; i < 10; i++ {
				_, err := sim.Step()
				Expect(err).NotTo(HaveOccurred())
			}

			l := sim.Lattice()
			centroid, err := l.Centroid()
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Origin().ApproxEqualThreshold(centroid, 1e-9)).To(BeTrue())
			Expect(l.Origin().Y()).To(BeNumerically("<", 0))
			Expect(sim.CurrentAverageCompression()).To(BeNumerically("~", 0, 1e-9))
		})

		It("survives a fully removed body", func() {
			cfg.Size = 2
			sim := newSim(cfg)
			l := sim.Lattice()
			for i := 0; i < l.Len(); i++ {
				sim.Remove(l.CoordOf(i))
			}

			r, err := sim.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(r.LiveMasses).To(BeZero())
			Expect(r.AverageCompression).To(BeZero())
		})
	})

	Describe("consumers", func() {
		It("reports liveness by coordinate", func() {
			sim := newSim(cfg)
			c := lattice.Coord{X: 2, Y: 2, Z: 2}
			Expect(sim.IsLive(c)).To(BeTrue())
			Expect(sim.Remove(c)).To(BeTrue())
			Expect(sim.IsLive(c)).To(BeFalse())
			Expect(sim.IsLive(lattice.Coord{X: 3})).To(BeFalse())
			Expect(sim.Positions()).To(HaveLen(26))
		})

		It("publishes one reading per step to sinks, metrics and observers", func() {
			sink := &recordingSink{}
			metric := &countingMetric{}
			obs := &liveObserver{}
			sim := newSim(cfg, dynamo.WithSink(sink), dynamo.WithMetric(metric), dynamo.WithObserver(obs))

			result, err := sim.Run(context.Background(), 1.0)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.StepsTaken).To(Equal(50))
			Expect(result.Compression).To(HaveLen(50))
			Expect(result.Times[49]).To(BeNumerically("~", 1.0, 1e-9))
			Expect(sink.Len()).To(Equal(50))
			Expect(result.Metrics["count"]).To(Equal(50.0))
			Expect(obs.live).To(HaveLen(50))
			Expect(obs.live[0]).To(Equal(cfg.Size * cfg.Size * cfg.Size))
		})

		It("lowers the top layer after a drop", func() {
			sim := newSim(cfg)
			sim.Drop(2.0)

			// the first step measures springs before the impulse moves anything
			r, err := sim.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(r.AverageCompression).To(BeZero())

			r, err = sim.Step()
			Expect(err).NotTo(HaveOccurred())
			Expect(r.AverageCompression).To(BeNumerically(">", 0))
		})
	})

	Describe("failure handling", func() {
		It("stops a run on a non-finite state", func() {
			sim := newSim(cfg)
			sim.Lattice().Point(0).Velocity = mgl64.Vec3{math.Inf(1), 0, 0}

			result, err := sim.Run(context.Background(), 1.0)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0]).To(MatchError(dynamo.ErrInvalidState))

			var simErr *dynamo.SimulationError
			Expect(result.Errors[0]).To(BeAssignableToTypeOf(simErr))
			Expect(result.StepsTaken).To(BeZero())
		})

		It("rejects a non-positive duration", func() {
			sim := newSim(cfg)
			_, err := sim.Run(context.Background(), 0)
			Expect(err).To(HaveOccurred())
		})

		It("honors cancellation", func() {
			sim := newSim(cfg)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			result, err := sim.Run(ctx, 1.0)
			Expect(err).To(MatchError(context.Canceled))
			Expect(result.StepsTaken).To(BeZero())
		})
	})

	Describe("fixed-rate driver", func() {
		It("steps until the context ends", func() {
			cfg.StepRate = 500
			sink := &recordingSink{}
			sim := newSim(cfg, dynamo.WithSink(sink))

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			err := sim.RunFixedRate(ctx)
			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(sink.Len()).To(BeNumerically(">", 0))
		})

		It("survives a rate whose period rounds below a nanosecond", func() {
			cfg.Size = 2
			cfg.StepRate = 2e9
			sim := newSim(cfg)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			Expect(func() { _ = sim.RunFixedRate(ctx) }).NotTo(Panic())
			Expect(dynamo.TickInterval(2e9)).To(Equal(time.Nanosecond))
			Expect(dynamo.TickInterval(50)).To(Equal(20 * time.Millisecond))
		})
	})

	Describe("parallel force pass", func() {
		It("matches the sequential simulator step for step", func() {
			cfg.Size = 8
			seqCfg, parCfg := cfg, cfg
			parCfg.Workers = 4

			seq := newSim(seqCfg)
			par := newSim(parCfg)
			stretchX(seq.Lattice(), 0.05)
			stretchX(par.Lattice(), 0.05)

			for i := 0; i < 20; i++ {
				a, err := seq.Step()
				Expect(err).NotTo(HaveOccurred())
				b, err := par.Step()
				Expect(err).NotTo(HaveOccurred())
				Expect(b.AverageCompression).To(BeNumerically("~", a.AverageCompression, 1e-9))
			}
		})
	})

	Describe("ensemble", func() {
		It("runs independent lattices concurrently", func() {
			factory := func(k float64) func() (*dynamo.Simulator, error) {
				return func() (*dynamo.Simulator, error) {
					c := cfg
					c.SpringConstant = k
					sim, err := dynamo.New(c, integrators.NewSemiImplicitEuler())
					if err != nil {
						return nil, err
					}
					sim.Drop(1.0)
					return sim, nil
				}
			}

			results, err := dynamo.NewEnsemble(factory(5), factory(20), factory(80)).Run(context.Background(), 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			for _, r := range results {
				Expect(r.StepsTaken).To(Equal(25))
			}
		})

		It("surfaces a member construction error", func() {
			bad := func() (*dynamo.Simulator, error) {
				c := cfg
				c.Size = 0
				return dynamo.New(c, integrators.NewSemiImplicitEuler())
			}
			_, err := dynamo.NewEnsemble(bad).Run(context.Background(), 0.5)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))
		})
	})
})
