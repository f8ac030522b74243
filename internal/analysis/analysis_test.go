package analysis

import (
	"errors"
	"math"
	"testing"
)

func sine(n int, rate, freq, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

func TestPowerSpectrum_RemovesMean(t *testing.T) {
	ps := PowerSpectrum([]float64{3, 3, 3, 3, 3, 3})
	if len(ps) != 4 {
		t.Fatalf("expected 4 bins, got %d", len(ps))
	}
	for i, v := range ps {
		if v > 1e-12 {
			t.Errorf("bin %d: expected 0 for constant trace, got %v", i, v)
		}
	}
}

func TestPowerSpectrum_Empty(t *testing.T) {
	if ps := PowerSpectrum(nil); ps != nil {
		t.Errorf("expected nil, got %v", ps)
	}
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		n    int
		rate float64
		freq float64
	}{
		{"power of two", 256, 50, 2.5},
		{"odd length", 250, 50, 4},
		{"high rate", 1000, 500, 25},
	}

	for _, tt := range tests {
		got, amp, err := DominantFrequency(sine(tt.n, tt.rate, tt.freq, 0.05), tt.rate)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		resolution := tt.rate / float64(tt.n)
		if math.Abs(got-tt.freq) > resolution {
			t.Errorf("%s: expected %v Hz, got %v", tt.name, tt.freq, got)
		}
		if amp <= 0 {
			t.Errorf("%s: expected positive amplitude", tt.name)
		}
	}
}

func TestDominantFrequency_Short(t *testing.T) {
	if _, _, err := DominantFrequency([]float64{1, 2}, 50); !errors.Is(err, ErrShortTrace) {
		t.Errorf("expected ErrShortTrace, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	times := []float64{0.02, 0.04, 0.06, 0.08, 0.10, 0.12}
	trace := []float64{0.03, 0.08, 0.02, 0.011, 0.0105, 0.01}

	s, err := Summarize(times, trace, 50, 0.002)
	if err != nil {
		t.Fatal(err)
	}
	if s.Peak != 0.08 || s.PeakTime != 0.04 {
		t.Errorf("expected peak 0.08 at 0.04, got %v at %v", s.Peak, s.PeakTime)
	}
	if s.Final != 0.01 {
		t.Errorf("expected final 0.01, got %v", s.Final)
	}
	if !s.Settled || s.SettlingTime != 0.08 {
		t.Errorf("expected settled at 0.08, got %v (settled=%v)", s.SettlingTime, s.Settled)
	}
	if s.Steps != 6 {
		t.Errorf("expected 6 steps, got %d", s.Steps)
	}
	if s.StdDev <= 0 {
		t.Error("expected positive spread")
	}
}

func TestSummarize_Errors(t *testing.T) {
	if _, err := Summarize(nil, nil, 50, 0.01); !errors.Is(err, ErrShortTrace) {
		t.Errorf("expected ErrShortTrace, got %v", err)
	}
	if _, err := Summarize([]float64{1}, []float64{1, 2}, 50, 0.01); err == nil {
		t.Error("expected length mismatch error")
	}
}
