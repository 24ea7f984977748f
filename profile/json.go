// Package profile provides named and file-based run profiles applied on top
// of the engine's default parameters.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-tsm/psola"
)

// File is the JSON schema for run profiles. Every field is optional and
// overrides the corresponding default.
type File struct {
	Speed         *float64 `json:"speed"`
	MinVoiceFreq  *int     `json:"min_voice_freq"`
	MaxVoiceFreq  *int     `json:"max_voice_freq"`
	StepPolicy    string   `json:"step_policy"` // "full" or "half"
	Precision     string   `json:"precision"`   // "double" or "single"
	LegacyClamp   *bool    `json:"legacy_clamp"`
	SearchWorkers *int     `json:"search_workers"`
}

// Named returns a built-in profile. "voice" covers the general human voice
// range (65-400 Hz); "low-voice" targets low-pitched speech (65-135 Hz).
func Named(name string) (*psola.Params, error) {
	p := psola.NewDefaultParams()
	switch strings.ToLower(name) {
	case "voice":
		p.MinVoiceFreq = 65
		p.MaxVoiceFreq = 400
	case "low-voice":
		p.MinVoiceFreq = 65
		p.MaxVoiceFreq = 135
	default:
		return nil, fmt.Errorf("unknown profile %q (expected \"voice\" or \"low-voice\")", name)
	}
	return p, nil
}

// LoadJSON loads a profile JSON file and applies it on top of defaults.
func LoadJSON(path string) (*psola.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := psola.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyFile applies a parsed profile onto existing params.
func ApplyFile(dst *psola.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.Speed != nil {
		if *f.Speed <= 0 {
			return fmt.Errorf("speed must be > 0")
		}
		dst.Speed = *f.Speed
	}
	if f.MinVoiceFreq != nil {
		if *f.MinVoiceFreq <= 0 {
			return fmt.Errorf("min_voice_freq must be > 0")
		}
		dst.MinVoiceFreq = *f.MinVoiceFreq
	}
	if f.MaxVoiceFreq != nil {
		if *f.MaxVoiceFreq <= 0 {
			return fmt.Errorf("max_voice_freq must be > 0")
		}
		dst.MaxVoiceFreq = *f.MaxVoiceFreq
	}
	if dst.MinVoiceFreq >= dst.MaxVoiceFreq {
		return fmt.Errorf("min_voice_freq %d must be below max_voice_freq %d",
			dst.MinVoiceFreq, dst.MaxVoiceFreq)
	}
	switch strings.ToLower(f.StepPolicy) {
	case "":
	case "full":
		dst.StepPolicy = psola.StepFullPeriod
	case "half":
		dst.StepPolicy = psola.StepHalfPeriod
	default:
		return fmt.Errorf("invalid step_policy %q (expected \"full\" or \"half\")", f.StepPolicy)
	}
	switch strings.ToLower(f.Precision) {
	case "":
	case "double":
		dst.Precision = psola.PrecisionDouble
	case "single":
		dst.Precision = psola.PrecisionSingle
	default:
		return fmt.Errorf("invalid precision %q (expected \"double\" or \"single\")", f.Precision)
	}
	if f.LegacyClamp != nil {
		dst.LegacyClamp = *f.LegacyClamp
	}
	if f.SearchWorkers != nil {
		if *f.SearchWorkers < 1 {
			return fmt.Errorf("search_workers must be >= 1")
		}
		dst.SearchWorkers = *f.SearchWorkers
	}
	return nil
}
