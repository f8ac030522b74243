package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	Steps             int
	Mean              float64
	StdDev            float64
	Peak              float64
	PeakTime          float64
	Final             float64
	SettlingTime      float64
	Settled           bool
	DominantFrequency float64
}

// Summarize reduces a compression trace. The body counts as settled once the
// reading stays within tolerance of the final value; SettlingTime is the
// first time from which that holds.
func Summarize(times, compression []float64, sampleRate, tolerance float64) (Summary, error) {
	if len(times) != len(compression) {
		return Summary{}, errors.New("analysis: times and compression differ in length")
	}
	if len(compression) == 0 {
		return Summary{}, ErrShortTrace
	}

	peak := floats.MaxIdx(compression)
	s := Summary{
		Steps:    len(compression),
		Mean:     stat.Mean(compression, nil),
		Peak:     compression[peak],
		PeakTime: times[peak],
		Final:    compression[len(compression)-1],
	}
	if len(compression) > 1 {
		s.StdDev = stat.StdDev(compression, nil)
	}

	settle := len(compression) - 1
	for i := len(compression) - 1; i >= 0; i-- {
		if math.Abs(compression[i]-s.Final) > tolerance {
			break
		}
		settle = i
	}
	s.SettlingTime = times[settle]
	s.Settled = settle < len(compression)-1 || len(compression) == 1

	if f, _, err := DominantFrequency(compression, sampleRate); err == nil {
		s.DominantFrequency = f
	}
	return s, nil
}
