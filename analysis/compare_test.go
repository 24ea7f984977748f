package analysis

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

func sine(t *testing.T, sampleRate int, freqHz, amplitude float64, n int) []float64 {
	t.Helper()
	g := signal.NewGenerator(core.WithSampleRate(float64(sampleRate)))
	x, err := g.Sine(freqHz, amplitude, n)
	if err != nil {
		t.Fatalf("sine generation: %v", err)
	}
	return x
}

func TestCompareIdenticalSignals(t *testing.T) {
	x := sine(t, 8000, 100, 0.5, 32000)
	m := Compare(x, x, 8000)

	if m.DurationRatio != 1 {
		t.Errorf("duration ratio = %g, want 1", m.DurationRatio)
	}
	if math.Abs(m.RMSRatio-1) > 1e-9 {
		t.Errorf("rms ratio = %g, want 1", m.RMSRatio)
	}
	if m.Score > 0.05 {
		t.Errorf("score = %g, want near 0", m.Score)
	}
	if m.Similarity < 0.8 {
		t.Errorf("similarity = %g, want near 1", m.Similarity)
	}
}

func TestCompareDetectsDurationChange(t *testing.T) {
	x := sine(t, 8000, 100, 0.5, 32000)
	m := Compare(x, x[:16000], 8000)

	if math.Abs(m.DurationRatio-0.5) > 1e-9 {
		t.Errorf("duration ratio = %g, want 0.5", m.DurationRatio)
	}
	full := Compare(x, x, 8000)
	if m.Score <= full.Score {
		t.Errorf("halved candidate scored %g, not worse than identical %g", m.Score, full.Score)
	}
}

func TestCompareDetectsPitchShift(t *testing.T) {
	ref := sine(t, 8000, 100, 0.5, 32000)
	shifted := sine(t, 8000, 150, 0.5, 32000)
	m := Compare(ref, shifted, 8000)

	if math.Abs(m.RefFundamentalHz-100) > 2 {
		t.Errorf("ref fundamental = %.2f Hz, want 100", m.RefFundamentalHz)
	}
	if math.Abs(m.CandFundamentalHz-150) > 2 {
		t.Errorf("cand fundamental = %.2f Hz, want 150", m.CandFundamentalHz)
	}
	same := Compare(ref, ref, 8000)
	if m.Score <= same.Score {
		t.Errorf("pitch-shifted candidate scored %g, not worse than identical %g", m.Score, same.Score)
	}
}

func TestCompareEmptyInputs(t *testing.T) {
	x := sine(t, 8000, 100, 0.5, 8000)
	if m := Compare(nil, x, 8000); m.Score != 1 {
		t.Errorf("nil reference: score = %g, want 1", m.Score)
	}
	if m := Compare(x, nil, 8000); m.Score != 1 {
		t.Errorf("nil candidate: score = %g, want 1", m.Score)
	}
	if m := Compare(x, x, 0); m.Score != 1 {
		t.Errorf("zero sample rate: score = %g, want 1", m.Score)
	}
}

func TestFundamentalHz(t *testing.T) {
	tests := []struct {
		freq float64
		tol  float64
	}{
		{100, 2},
		{220, 2},
		{440, 2},
	}
	for _, tt := range tests {
		x := sine(t, 8000, tt.freq, 0.5, 16384)
		got := FundamentalHz(x, 8000, 40, 1000)
		if math.Abs(got-tt.freq) > tt.tol {
			t.Errorf("FundamentalHz(%g Hz sine) = %.2f", tt.freq, got)
		}
	}

	if got := FundamentalHz(make([]float64, 16384), 8000, 40, 1000); got != 0 {
		t.Errorf("FundamentalHz(silence) = %g, want 0", got)
	}
	if got := FundamentalHz(make([]float64, 10), 8000, 40, 1000); got != 0 {
		t.Errorf("FundamentalHz(short) = %g, want 0", got)
	}
}
