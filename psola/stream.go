package psola

import (
	"fmt"
	"math"
)

// Stream is one time-scale modification run over a single flat channel of
// samples. It owns the guard-padded input copy, the two rotating frame
// buffers, and the playback cursors; nothing is shared, so one stream per
// channel (or per test) is safe.
type Stream struct {
	params     *Params
	sampleRate int

	minPeriod int
	maxPeriod int
	estimator *Estimator

	input    []int16 // zero guard of maxPeriod samples on both ends
	inputLen int     // unpadded signal length

	output []int16

	inputPos      int     // boundary of the most recently finalized frame
	exactInputPos float64 // continuous read head, advances by Speed per output sample
	stepSize      int     // input advance of the current step

	cur  *frame
	prev *frame
	last Estimate // previous step's estimate, narrows the next search
}

// NewStream validates params against the signal and prepares a run. The
// samples slice is copied into a guard-padded buffer and never aliased.
func NewStream(sampleRate int, params *Params, samples []int16) (*Stream, error) {
	if err := params.Validate(sampleRate); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrEmptySignal
	}

	minPeriod := sampleRate / params.MaxVoiceFreq
	maxPeriod := sampleRate / params.MinVoiceFreq

	input := make([]int16, len(samples)+2*maxPeriod)
	copy(input[maxPeriod:], samples)

	outCap := int(float64(len(samples))/params.Speed) + 4096

	s := &Stream{
		params:        params,
		sampleRate:    sampleRate,
		minPeriod:     minPeriod,
		maxPeriod:     maxPeriod,
		estimator:     NewEstimator(minPeriod, maxPeriod, params.SearchWorkers),
		input:         input,
		inputLen:      len(samples),
		output:        make([]int16, 0, outCap),
		inputPos:      maxPeriod,
		exactInputPos: float64(maxPeriod),
		cur:           newFrame(maxPeriod, minPeriod),
		prev:          newFrame(maxPeriod, minPeriod),
		last:          Estimate{Period: minPeriod},
	}
	return s, nil
}

// Step advances the stream by one synthesis step: rotate the frame buffers,
// estimate and synthesize the next frame, then emit crossfaded output
// samples until the read head passes the step boundary.
func (s *Stream) Step() error {
	s.prev, s.cur = s.cur, s.prev

	step := s.prev.period()
	if s.params.StepPolicy == StepHalfPeriod {
		step /= 2
		if step < 1 {
			step = 1
		}
	}
	s.stepSize = step

	at := s.inputPos + step
	s.last = s.estimator.Estimate(s.input, at, s.last)
	s.cur.synthesize(s.input, at, s.last.Period, s.params.Precision)
	s.cur.align(s.prev.pos, step)

	for s.exactInputPos-float64(s.inputPos) < float64(step) {
		r := (s.exactInputPos - float64(s.inputPos)) / float64(step)
		if r < 0 || r > 1 {
			return fmt.Errorf("%w: r=%g at input position %d", ErrRatioOutOfRange, r, s.inputPos)
		}
		v := (1.0-r)*s.prev.sample() + r*s.cur.sample()
		s.output = append(s.output, s.clamp(v))
		s.prev.advance()
		s.cur.advance()
		s.exactInputPos += s.params.Speed
	}

	s.inputPos += step
	return nil
}

// Run drives Step until the next window would read past the signal.
func (s *Stream) Run() error {
	end := s.maxPeriod + s.inputLen
	for s.inputPos+2*s.maxPeriod < end {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Output returns the samples generated so far.
func (s *Stream) Output() []int16 {
	return s.output
}

// InputPos reports the discrete input cursor, relative to the signal start.
func (s *Stream) InputPos() int {
	return s.inputPos - s.maxPeriod
}

// OutputPos reports the number of output samples generated.
func (s *Stream) OutputPos() int {
	return len(s.output)
}

// PeriodBounds reports the derived search bounds in samples.
func (s *Stream) PeriodBounds() (minPeriod, maxPeriod int) {
	return s.minPeriod, s.maxPeriod
}

func (s *Stream) clamp(v float64) int16 {
	n := int(math.Round(v))
	lo := math.MinInt16
	if s.params.LegacyClamp {
		lo = -math.MaxInt16
	}
	if n > math.MaxInt16 {
		n = math.MaxInt16
	} else if n < lo {
		n = lo
	}
	return int16(n)
}

// ChangeSpeed runs a whole mono channel through a fresh stream and returns
// the time-scaled samples.
func ChangeSpeed(sampleRate int, params *Params, samples []int16) ([]int16, error) {
	s, err := NewStream(sampleRate, params, samples)
	if err != nil {
		return nil, err
	}
	if err := s.Run(); err != nil {
		return nil, err
	}
	return s.Output(), nil
}
