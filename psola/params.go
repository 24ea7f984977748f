package psola

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpeed indicates a non-positive speed factor.
	ErrInvalidSpeed = errors.New("psola: speed must be > 0")
	// ErrInvalidFreqRange indicates unusable voice-frequency bounds.
	ErrInvalidFreqRange = errors.New("psola: invalid voice frequency range")
	// ErrEmptySignal indicates an empty input signal.
	ErrEmptySignal = errors.New("psola: empty input signal")
	// ErrRatioOutOfRange indicates the crossfade ratio left [0,1]. This is a
	// broken position invariant and is fatal; clamping would corrupt output.
	ErrRatioOutOfRange = errors.New("psola: crossfade ratio out of range")
)

// StepPolicy selects how far the input cursor advances per synthesis step.
type StepPolicy int

const (
	// StepFullPeriod advances by the full period of the finalized frame.
	StepFullPeriod StepPolicy = iota
	// StepHalfPeriod advances by half the period for denser frame overlap.
	StepHalfPeriod
)

// Precision selects the numeric policy for frame synthesis.
type Precision int

const (
	// PrecisionDouble keeps frame samples in float64 end to end.
	PrecisionDouble Precision = iota
	// PrecisionSingle quantizes synthesized frame samples through float32.
	PrecisionSingle
)

// Params configures a time-scale modification run. Immutable once a Stream
// has been created from it.
type Params struct {
	// Speed is the tempo factor. Values > 1 speed up, values in (0,1) slow
	// down. Required, must be > 0.
	Speed float64

	// MinVoiceFreq and MaxVoiceFreq bound the expected pitch range in Hz.
	// They derive the period search range: minPeriod = sampleRate/MaxVoiceFreq,
	// maxPeriod = sampleRate/MinVoiceFreq.
	MinVoiceFreq int
	MaxVoiceFreq int

	// StepPolicy selects full-period (default) or half-period stepping.
	StepPolicy StepPolicy

	// Precision selects the frame synthesis numeric policy. The fractional
	// playback cursor and the pitch-search accumulator always use 64-bit
	// arithmetic regardless of this setting.
	Precision Precision

	// LegacyClamp clamps output samples to the asymmetric range
	// [-32767, 32767] instead of the full int16 range. Only useful for
	// bit-parity with older renderings.
	LegacyClamp bool

	// SearchWorkers splits the candidate-period search across this many
	// goroutines. Values < 2 search sequentially. Results are identical to
	// the sequential search for any worker count.
	SearchWorkers int
}

// NewDefaultParams returns parameters for the general human voice range at
// unit speed.
func NewDefaultParams() *Params {
	return &Params{
		Speed:         1.0,
		MinVoiceFreq:  65,
		MaxVoiceFreq:  400,
		StepPolicy:    StepFullPeriod,
		Precision:     PrecisionDouble,
		SearchWorkers: 1,
	}
}

// Validate checks the parameters against a concrete sample rate.
func (p *Params) Validate(sampleRate int) error {
	if p.Speed <= 0 {
		return fmt.Errorf("%w (got %g)", ErrInvalidSpeed, p.Speed)
	}
	if p.MinVoiceFreq <= 0 || p.MaxVoiceFreq <= 0 || p.MinVoiceFreq >= p.MaxVoiceFreq {
		return fmt.Errorf("%w: min=%d Hz max=%d Hz", ErrInvalidFreqRange, p.MinVoiceFreq, p.MaxVoiceFreq)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d Hz", ErrInvalidFreqRange, sampleRate)
	}
	if sampleRate/p.MaxVoiceFreq < 1 {
		return fmt.Errorf("%w: max frequency %d Hz above Nyquist coverage at %d Hz",
			ErrInvalidFreqRange, p.MaxVoiceFreq, sampleRate)
	}
	return nil
}
