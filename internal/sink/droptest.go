package sink

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// CompressionReader is polled for the latest average compression.
type CompressionReader interface {
	CurrentAverageCompression() float64
}

// Dropper receives impacts.
type Dropper interface {
	Drop(impulse float64)
}

// Event marks a rising crossing of the compression threshold.
type Event struct {
	RunID       string
	SimTime     float64
	Compression float64
	Threshold   float64
	Drop        int
	RecordedAt  time.Time
}

// EventRecorder persists threshold events.
type EventRecorder interface {
	Record(ctx context.Context, ev Event) error
}

type DropTestConfig struct {
	Threshold float64
	// Interval is the simulated time between impacts; 0 disables impacts.
	Interval float64
	Impulse  float64
}

func DefaultDropTestConfig() DropTestConfig {
	return DropTestConfig{Threshold: 0.05, Interval: 2.0, Impulse: 3.0}
}

// DropTest drops periodic impacts onto the body and watches the compression
// reading on its own tick. It is never pushed to.
type DropTest struct {
	cfg      DropTestConfig
	runID    string
	reader   CompressionReader
	dropper  Dropper
	recorder EventRecorder
	logger   *log.Logger

	lastDrop float64
	drops    int
	above    bool
	events   int
}

type DropTestOption func(*DropTest)

func WithRecorder(r EventRecorder) DropTestOption {
	return func(d *DropTest) { d.recorder = r }
}

func WithDropLogger(l *log.Logger) DropTestOption {
	return func(d *DropTest) { d.logger = l }
}

func WithRunID(id string) DropTestOption {
	return func(d *DropTest) { d.runID = id }
}

// NewDropTest watches reader. dropper may be nil to only observe.
func NewDropTest(cfg DropTestConfig, reader CompressionReader, dropper Dropper, opts ...DropTestOption) (*DropTest, error) {
	if cfg.Threshold <= 0 {
		return nil, fmt.Errorf("drop test threshold must be positive, got %f", cfg.Threshold)
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("drop test interval must be non-negative, got %f", cfg.Interval)
	}
	d := &DropTest{
		cfg:     cfg,
		reader:  reader,
		dropper: dropper,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Tick is called once per consumer update with the current simulated time.
// The first impact lands on the first tick.
func (d *DropTest) Tick(ctx context.Context, now float64) error {
	if d.dropper != nil && d.cfg.Interval > 0 && (d.drops == 0 || now-d.lastDrop >= d.cfg.Interval) {
		d.dropper.Drop(d.cfg.Impulse)
		d.lastDrop = now
		d.drops++
		d.logger.Debug("impact", "drop", d.drops, "t", now, "impulse", d.cfg.Impulse)
	}

	value := d.reader.CurrentAverageCompression()
	if value < d.cfg.Threshold {
		d.above = false
		return nil
	}
	if d.above {
		return nil
	}
	d.above = true
	d.events++

	ev := Event{
		RunID:       d.runID,
		SimTime:     now,
		Compression: value,
		Threshold:   d.cfg.Threshold,
		Drop:        d.drops,
		RecordedAt:  time.Now(),
	}
	d.logger.Info("compression threshold crossed", "t", now, "compression", value, "threshold", d.cfg.Threshold, "drop", d.drops)

	if d.recorder == nil {
		return nil
	}
	if err := d.recorder.Record(ctx, ev); err != nil {
		return fmt.Errorf("record drop event: %w", err)
	}
	return nil
}

func (d *DropTest) Drops() int  { return d.drops }
func (d *DropTest) Events() int { return d.events }
