package main

import (
	"math"
	"testing"
)

func TestFromNormalized(t *testing.T) {
	defs := []knobDef{
		{Name: "speed", Min: 0.25, Max: 4.0},
		{Name: "min_voice_freq", Min: 40, Max: 120, IsInt: true},
	}

	c := fromNormalized([]float64{0, 1}, defs)
	if c.Vals[0] != 0.25 || c.Vals[1] != 120 {
		t.Errorf("endpoints = %v", c.Vals)
	}

	c = fromNormalized([]float64{-0.5, 1.7}, defs)
	if c.Vals[0] != 0.25 || c.Vals[1] != 120 {
		t.Errorf("out-of-range positions not clamped: %v", c.Vals)
	}

	c = fromNormalized([]float64{0.5, 0.501}, defs)
	if math.Abs(c.Vals[0]-2.125) > 1e-9 {
		t.Errorf("midpoint speed = %g, want 2.125", c.Vals[0])
	}
	if c.Vals[1] != math.Round(c.Vals[1]) {
		t.Errorf("integer knob not rounded: %g", c.Vals[1])
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	defs := []knobDef{
		{Name: "speed", Min: 0.25, Max: 4.0},
		{Name: "max_voice_freq", Min: 130, Max: 500, IsInt: true},
	}
	orig := candidate{Vals: []float64{1.75, 400}}
	back := fromNormalized(toNormalized(orig, defs), defs)
	for i := range orig.Vals {
		if math.Abs(back.Vals[i]-orig.Vals[i]) > 1e-9 {
			t.Errorf("knob %d: round trip %g -> %g", i, orig.Vals[i], back.Vals[i])
		}
	}
}
