package main

import "math"

// knobDef is one bounded optimization dimension. The optimizer works in
// normalized [0,1] coordinates; knob values map linearly into [Min, Max].
type knobDef struct {
	Name  string
	Min   float64
	Max   float64
	IsInt bool
}

type candidate struct {
	Vals []float64
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, d := range defs {
		p := clamp(pos[i], 0, 1)
		v := d.Min + p*(d.Max-d.Min)
		if d.IsInt {
			v = math.Round(v)
		}
		vals[i] = clamp(v, d.Min, d.Max)
	}
	return candidate{Vals: vals}
}

func toNormalized(c candidate, defs []knobDef) []float64 {
	pos := make([]float64, len(defs))
	for i, d := range defs {
		if d.Max > d.Min {
			pos[i] = clamp((c.Vals[i]-d.Min)/(d.Max-d.Min), 0, 1)
		}
	}
	return pos
}

func cloneCandidate(c candidate) candidate {
	return candidate{Vals: append([]float64(nil), c.Vals...)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
