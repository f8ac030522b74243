package dynamo

import "gonum.org/v1/gonum/stat"

// AverageCompression is the arithmetic mean of one step's samples.
// A step without springs (a single-mass lattice) yields 0 and ErrNoSamples.
func AverageCompression(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrNoSamples
	}
	return stat.Mean(samples, nil), nil
}
