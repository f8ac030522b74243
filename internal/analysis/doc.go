// Package analysis characterizes recorded compression traces.
//
//   - [PowerSpectrum]: magnitude spectrum of the mean-removed trace
//   - [DominantFrequency]: strongest oscillation of the body
//   - [Summarize]: mean, spread, peak and settling time of a run
//
// A trace sampled at the step rate r resolves frequencies up to r/2:
//
//	s, err := analysis.Summarize(times, compression, 50, 0.01)
//	fmt.Printf("rings at %.2f Hz\n", s.DominantFrequency)
package analysis
