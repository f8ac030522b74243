package sink

import (
	"math"
	"sync/atomic"

	"github.com/san-kum/springlattice/internal/dynamo"
)

// Latest keeps only the most recent reading. Older readings are overwritten
// without being observed.
type Latest struct {
	compression atomic.Uint64
	step        atomic.Int64
}

func NewLatest() *Latest { return &Latest{} }

func (l *Latest) Publish(r dynamo.Reading) {
	l.compression.Store(math.Float64bits(r.AverageCompression))
	l.step.Store(int64(r.Step))
}

func (l *Latest) CurrentAverageCompression() float64 {
	return math.Float64frombits(l.compression.Load())
}

// Step is the step number of the stored reading; 0 before the first publish.
func (l *Latest) Step() int { return int(l.step.Load()) }
