package experiment

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/springlattice/internal/config"
	"github.com/san-kum/springlattice/internal/dynamo"
	"github.com/san-kum/springlattice/internal/lattice"
	"github.com/san-kum/springlattice/internal/sink"
)

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *log.Logger
	sinks    []dynamo.Sink
	recorder sink.EventRecorder
	runID    string

	simulator *dynamo.Simulator
	dropTest  *sink.DropTest
}

type Option func(*Experiment)

func WithLogger(l *log.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func WithSink(s dynamo.Sink) Option {
	return func(e *Experiment) { e.sinks = append(e.sinks, s) }
}

// WithRecorder stores drop-test events under runID.
func WithRecorder(r sink.EventRecorder, runID string) Option {
	return func(e *Experiment) {
		e.recorder = r
		e.runID = runID
	}
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Setup builds the simulator, deforms the body and arms the drop test.
func (e *Experiment) Setup() error {
	dcfg, err := e.cfg.Dynamo()
	if err != nil {
		return err
	}
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	opts := []dynamo.Option{dynamo.WithLogger(e.logger)}
	for _, m := range e.registry.DefaultMetrics(dcfg) {
		opts = append(opts, dynamo.WithMetric(m))
	}
	for _, s := range e.sinks {
		opts = append(opts, dynamo.WithSink(s))
	}

	sim, err := dynamo.New(dcfg, integ, opts...)
	if err != nil {
		return err
	}
	Perturb(sim.Lattice(), e.cfg.Perturb)
	e.simulator = sim

	if e.cfg.DropTest.Enabled {
		dtOpts := []sink.DropTestOption{sink.WithDropLogger(e.logger), sink.WithRunID(e.runID)}
		if e.recorder != nil {
			dtOpts = append(dtOpts, sink.WithRecorder(e.recorder))
		}
		dt, err := sink.NewDropTest(sink.DropTestConfig{
			Threshold: e.cfg.DropTest.Threshold,
			Interval:  e.cfg.DropTest.Interval,
			Impulse:   e.cfg.DropTest.Impulse,
		}, sim, sim, dtOpts...)
		if err != nil {
			return err
		}
		e.dropTest = dt
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	var hooks []dynamo.StepHook
	if e.dropTest != nil {
		hooks = append(hooks, func(ctx context.Context, r dynamo.Reading) error {
			return e.dropTest.Tick(ctx, r.Time)
		})
	}

	result, err := e.simulator.Run(ctx, e.cfg.Duration, hooks...)
	if err != nil {
		return result, err
	}
	e.logger.Info("run finished",
		"steps", result.StepsTaken,
		"t", e.simulator.Time(),
		"compression", e.simulator.CurrentAverageCompression(),
		"errors", len(result.Errors),
	)
	return result, nil
}

// Simulator returns the underlying simulator for observers and the live view.
func (e *Experiment) Simulator() *dynamo.Simulator {
	return e.simulator
}

// DropTest is nil unless the config enables it.
func (e *Experiment) DropTest() *sink.DropTest {
	return e.dropTest
}

// Perturb displaces every mass by the configured strain, the mass at lattice
// index i moving by stretch*i*spacing along each axis, plus seeded jitter.
func Perturb(l *lattice.Lattice, p config.PerturbConfig) {
	if p.IsZero() {
		return
	}
	rng := rand.New(rand.NewSource(p.Seed))
	stretch := p.Stretch()
	spacing := l.Spacing()

	for i := 0; i < l.Len(); i++ {
		c := l.CoordOf(i)
		d := mgl64.Vec3{
			stretch.X() * float64(c.X) * spacing,
			stretch.Y() * float64(c.Y) * spacing,
			stretch.Z() * float64(c.Z) * spacing,
		}
		if p.Jitter > 0 {
			d = d.Add(mgl64.Vec3{
				rng.Float64()*2 - 1,
				rng.Float64()*2 - 1,
				rng.Float64()*2 - 1,
			}.Mul(p.Jitter * spacing))
		}
		l.Displace(c, d)
	}
}
