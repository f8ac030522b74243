package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrShortTrace = errors.New("analysis: trace too short")

// PowerSpectrum returns |X_k| for k = 0..n/2 of the mean-removed trace.
// Any length is accepted.
func PowerSpectrum(trace []float64) []float64 {
	if len(trace) == 0 {
		return nil
	}
	mean := stat.Mean(trace, nil)
	centered := make([]float64, len(trace))
	copy(centered, trace)
	floats.AddConst(-mean, centered)

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(coeffs)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz and magnitude of the largest
// non-DC bin. sampleRate is the step rate the trace was recorded at.
func DominantFrequency(trace []float64, sampleRate float64) (float64, float64, error) {
	if len(trace) < 4 {
		return 0, 0, ErrShortTrace
	}
	ps := PowerSpectrum(trace)
	bins := ps[1:]
	k := floats.MaxIdx(bins) + 1
	return float64(k) * sampleRate / float64(len(trace)), ps[k], nil
}
