package dynamo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springlattice/internal/lattice"
)

type Simulator struct {
	cfg        Config
	lat        *lattice.Lattice
	topo       lattice.Topology
	integrator Integrator
	forcer     Forcer
	metrics    []Metric
	observers  []Observer
	sinks      []Sink
	logger     *log.Logger

	mu      sync.Mutex
	step    int
	t       float64
	samples []float64
	latest  atomic.Uint64
}

type Option func(*Simulator)

func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func WithSink(sk Sink) Option {
	return func(s *Simulator) { s.sinks = append(s.sinks, sk) }
}

func WithMetric(m Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, m) }
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

// WithForcer replaces the force pass chosen from Config.Workers.
func WithForcer(f Forcer) Option {
	return func(s *Simulator) { s.forcer = f }
}

// New builds the lattice described by cfg. Construction errors are fatal;
// the caller must not step a simulator that failed to build.
func New(cfg Config, integrator Integrator, opts ...Option) (*Simulator, error) {
	if integrator == nil {
		return nil, fmt.Errorf("%w: nil integrator", ErrInvalidConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lat, err := lattice.Build(cfg.Size, cfg.Spacing, cfg.Origin, cfg.Anchor)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:        cfg,
		lat:        lat,
		topo:       lat.Topology(),
		integrator: integrator,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.forcer == nil {
		if cfg.Workers > 1 {
			s.forcer = NewParallelForcePass(cfg.Workers)
		} else {
			s.forcer = NewForcePass()
		}
	}

	s.logger.Debug("lattice built",
		"size", cfg.Size,
		"spacing", cfg.Spacing,
		"links", lattice.LinkCount(cfg.Size).Total(),
		"integrator", integrator.Name(),
		"workers", cfg.Workers,
	)
	return s, nil
}

func (s *Simulator) Config() Config { return s.cfg }

// Lattice exposes the owned lattice. Callers must not mutate it while another
// goroutine is stepping.
func (s *Simulator) Lattice() *lattice.Lattice { return s.lat }

// CurrentAverageCompression returns the last published reading. Intermediate
// readings between polls are not retained.
func (s *Simulator) CurrentAverageCompression() float64 {
	return math.Float64frombits(s.latest.Load())
}

func (s *Simulator) IsLive(c lattice.Coord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lat.IsLive(c)
}

// Positions snapshots the world position of every live mass.
func (s *Simulator) Positions() []lattice.Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lat.Positions()
}

// Samples copies the compression samples of the last step.
func (s *Simulator) Samples() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.samples))
	copy(out, s.samples)
	return out
}

// Time is the simulated time after the last completed step.
func (s *Simulator) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t
}

// Remove takes the mass at c out of the body.
func (s *Simulator) Remove(c lattice.Coord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lat.Remove(c)
}

// Drop adds a downward velocity of impulse to every live mass on the top layer.
func (s *Simulator) Drop(impulse float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	top := s.lat.Size() - 1
	dv := mgl64.Vec3{0, -impulse, 0}
	points := s.lat.Points()
	for i := range points {
		if points[i].Live && s.lat.CoordOf(i).Y == top {
			points[i].Velocity = points[i].Velocity.Add(dv)
		}
	}
}

// Step advances the body by one fixed interval.
func (s *Simulator) Step() (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stepLocked(s.cfg.Dt())
}

func (s *Simulator) stepLocked(dt float64) (Reading, error) {
	s.samples = s.forcer.Run(s.lat, s.topo, s.cfg.SpringConstant)
	s.integrator.Integrate(s.lat, s.cfg.Params(), dt)

	if s.cfg.ValidateState && !s.stateValid() {
		err := &SimulationError{Step: s.step, Time: s.t, Wrapped: ErrInvalidState}
		s.logger.Error("step failed", "step", s.step, "t", s.t, "err", err)
		return Reading{}, err
	}

	if _, err := s.lat.Recenter(); err != nil && !errors.Is(err, ErrEmptyLattice) {
		return Reading{}, err
	}

	avg, err := AverageCompression(s.samples)
	if err != nil && !errors.Is(err, ErrNoSamples) {
		return Reading{}, err
	}

	s.step++
	s.t += dt

	r := Reading{
		Step:               s.step,
		Time:               s.t,
		AverageCompression: avg,
		Samples:            len(s.samples),
		LiveMasses:         s.lat.LiveCount(),
		Degenerate:         s.forcer.Degenerate(),
	}
	s.latest.Store(math.Float64bits(avg))

	for _, m := range s.metrics {
		m.Observe(s.lat, r)
	}
	for _, o := range s.observers {
		o.OnStep(s.lat, r)
	}
	for _, sk := range s.sinks {
		sk.Publish(r)
	}

	return r, nil
}

func (s *Simulator) stateValid() bool {
	for _, p := range s.lat.Points() {
		if !p.Live {
			continue
		}
		for k := 0; k < 3; k++ {
			if math.IsNaN(p.Position[k]) || math.IsInf(p.Position[k], 0) ||
				math.IsNaN(p.Velocity[k]) || math.IsInf(p.Velocity[k], 0) {
				return false
			}
		}
	}
	return true
}

// StepHook runs after each step of Run, outside the simulator lock, so it may
// call back into the simulator.
type StepHook func(ctx context.Context, r Reading) error

// Run steps for duration seconds of simulated time and records the
// compression trace. A failed step or hook ends the run; the partial result
// is returned with the error recorded in Result.Errors.
func (s *Simulator) Run(ctx context.Context, duration float64, hooks ...StepHook) (*Result, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %f", duration)
	}

	steps := int(math.Round(duration * s.cfg.StepRate))
	result := &Result{
		Times:       make([]float64, 0, steps),
		Compression: make([]float64, 0, steps),
		Metrics:     make(map[string]float64),
		Errors:      make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

loop:
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		r, err := s.Step()
		if err != nil {
			result.Errors = append(result.Errors, err)
			break
		}

		result.StepsTaken++
		result.Times = append(result.Times, r.Time)
		result.Compression = append(result.Compression, r.AverageCompression)

		for _, hook := range hooks {
			if err := hook(ctx, r); err != nil {
				result.Errors = append(result.Errors, err)
				break loop
			}
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunFixedRate steps once per wall-clock interval until ctx is done or a
// step fails. Rates above 1 GHz tick every nanosecond.
func (s *Simulator) RunFixedRate(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval(s.cfg.StepRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Step(); err != nil {
				return err
			}
		}
	}
}

// TickInterval is the wall-clock period of rate, never shorter than 1ns.
func TickInterval(rate float64) time.Duration {
	return max(time.Duration(float64(time.Second)/rate), time.Nanosecond)
}
