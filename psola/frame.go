package psola

// frame is one synthesized pitch cycle plus its read cursor. Exactly two
// frames exist per stream; they swap roles every step and their backing
// arrays are never reallocated.
type frame struct {
	data []float64
	pos  int
}

func newFrame(maxPeriod, period int) *frame {
	f := &frame{data: make([]float64, period, maxPeriod)}
	return f
}

func (f *frame) period() int {
	return len(f.data)
}

// synthesize rebuilds f as a period-length waveform by fading between the
// cycle starting at samples[at] and the cycle one period later:
//
//	frame[i] = (i/period)*s[at+i] + (1-i/period)*s[at+period+i]
//
// Blending two observed cycles instead of copying one smooths the
// period boundary against the next step's estimate.
func (f *frame) synthesize(samples []int16, at, period int, precision Precision) {
	f.data = f.data[:period]
	inv := 1.0 / float64(period)
	for i := 0; i < period; i++ {
		r := float64(i) * inv
		v := r*float64(samples[at+i]) + (1.0-r)*float64(samples[at+period+i])
		if precision == PrecisionSingle {
			v = float64(float32(v))
		}
		f.data[i] = v
	}
}

// align derives the initial read cursor from the outgoing frame's cursor so
// the crossfade starts this frame at the phase matching the current playback
// position: subtract the step size, reduce modulo the period.
func (f *frame) align(outgoingPos, step int) {
	period := len(f.data)
	pos := (outgoingPos - step) % period
	if pos < 0 {
		pos += period
	}
	f.pos = pos
}

func (f *frame) sample() float64 {
	return f.data[f.pos]
}

func (f *frame) advance() {
	f.pos++
	if f.pos == len(f.data) {
		f.pos = 0
	}
}
