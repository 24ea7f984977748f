package psola

import (
	"math"
	"testing"

	timestats "github.com/cwbudde/algo-dsp/stats/time"

	"github.com/cwbudde/algo-tsm/analysis"
)

func toFloat64(x []int16) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v) / 32768.0
	}
	return out
}

func TestUnitSpeedPreservesEnvelopeAndPitch(t *testing.T) {
	const n = 4 * testRate
	samples := sineInt16(t, 100, 0.5, n)

	params := NewDefaultParams()
	out, err := ChangeSpeed(testRate, params, samples)
	if err != nil {
		t.Fatalf("ChangeSpeed: %v", err)
	}

	inRMS := timestats.RMS(toFloat64(samples))
	outRMS := timestats.RMS(toFloat64(out))
	if math.Abs(outRMS-inRMS) > 0.1*inRMS {
		t.Errorf("RMS drifted: in %.5f, out %.5f", inRMS, outRMS)
	}

	f0 := analysis.FundamentalHz(toFloat64(out), testRate, 40, 1000)
	if math.Abs(f0-100) > 3 {
		t.Errorf("fundamental = %.2f Hz, want 100 +/- 3", f0)
	}
}

func TestSpeedChangePreservesPitch(t *testing.T) {
	const n = 4 * testRate
	samples := sineInt16(t, 100, 0.5, n)

	for _, speed := range []float64{0.5, 2.0} {
		params := NewDefaultParams()
		params.Speed = speed
		out, err := ChangeSpeed(testRate, params, samples)
		if err != nil {
			t.Fatalf("speed %g: %v", speed, err)
		}
		f0 := analysis.FundamentalHz(toFloat64(out), testRate, 40, 1000)
		if math.Abs(f0-100) > 4 {
			t.Errorf("speed %g: fundamental = %.2f Hz, want 100 +/- 4", speed, f0)
		}
	}
}

func TestCompareScoresTimeScaledOutput(t *testing.T) {
	const n = 4 * testRate
	samples := sineInt16(t, 100, 0.5, n)

	params := NewDefaultParams()
	params.Speed = 2.0
	out, err := ChangeSpeed(testRate, params, samples)
	if err != nil {
		t.Fatalf("ChangeSpeed: %v", err)
	}

	m := analysis.Compare(toFloat64(samples), toFloat64(out), testRate)
	if math.Abs(m.DurationRatio-0.5) > 0.05 {
		t.Errorf("duration ratio = %.4f, want 0.5 +/- 0.05", m.DurationRatio)
	}
	if m.RefFundamentalHz <= 0 || m.CandFundamentalHz <= 0 {
		t.Fatalf("missing fundamentals: ref %.1f cand %.1f", m.RefFundamentalHz, m.CandFundamentalHz)
	}
	if ratio := m.CandFundamentalHz / m.RefFundamentalHz; math.Abs(ratio-1) > 0.05 {
		t.Errorf("fundamental shifted by factor %.3f", ratio)
	}
}
