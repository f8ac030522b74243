package metrics

import (
	"math"

	"github.com/san-kum/springlattice/internal/dynamo"
	"github.com/san-kum/springlattice/internal/lattice"
)

// MeanCompression is the time average of the per-step average compression.
type MeanCompression struct {
	sum     float64
	samples int
}

func NewMeanCompression() *MeanCompression { return &MeanCompression{} }

func (m *MeanCompression) Name() string { return "mean_compression" }

func (m *MeanCompression) Observe(_ *lattice.Lattice, r dynamo.Reading) {
	m.sum += r.AverageCompression
	m.samples++
}

func (m *MeanCompression) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanCompression) Reset() {
	m.sum = 0
	m.samples = 0
}

// PeakCompression is the largest per-step average compression seen.
type PeakCompression struct {
	peak float64
}

func NewPeakCompression() *PeakCompression { return &PeakCompression{} }

func (p *PeakCompression) Name() string { return "peak_compression" }

func (p *PeakCompression) Observe(_ *lattice.Lattice, r dynamo.Reading) {
	p.peak = math.Max(p.peak, r.AverageCompression)
}

func (p *PeakCompression) Value() float64 { return p.peak }
func (p *PeakCompression) Reset()         { p.peak = 0 }
