// Command tsm-fit searches for the speed factor (and optionally the voice
// frequency bounds) whose time-scaled output best matches a reference
// recording, using the mayfly optimizer over the analysis score.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-tsm/analysis"
	"github.com/cwbudde/algo-tsm/internal/wavio"
	"github.com/cwbudde/algo-tsm/psola"
)

type fitState struct {
	mu      sync.Mutex
	best    candidate
	bestFit analysis.Metrics
	hasBest bool
}

func main() {
	inputPath := flag.String("input", "", "Input WAV path")
	referencePath := flag.String("reference", "", "Reference WAV path to match")
	outputPath := flag.String("output", "", "Optional path for the best-fit output WAV")
	fitBounds := flag.Bool("fit-bounds", false, "Also fit the voice frequency bounds")
	minSpeed := flag.Float64("min-speed", 0.25, "Lower speed bound")
	maxSpeed := flag.Float64("max-speed", 4.0, "Upper speed bound")
	variant := flag.String("variant", "ma", "Mayfly variant: ma, desma, olce, eobbma, gsasma, mpma, aoblmoa")
	pop := flag.Int("pop", 10, "Mayfly population size")
	maxEvals := flag.Int("max-evals", 200, "Maximum objective evaluations")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	if *inputPath == "" || *referencePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: tsm-fit -input in.wav -reference ref.wav [flags]\n")
		os.Exit(2)
	}

	in, err := wavio.ReadWAV(*inputPath)
	if err != nil {
		die("failed to read input: %v", err)
	}
	ref, err := wavio.ReadWAV(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	refMono := wavio.MonoMix(ref.Samples, ref.NumChannels)
	inMono := monoInt16(in)

	defs := []knobDef{
		{Name: "speed", Min: *minSpeed, Max: *maxSpeed},
	}
	if *fitBounds {
		defs = append(defs,
			knobDef{Name: "min_voice_freq", Min: 40, Max: 120, IsInt: true},
			knobDef{Name: "max_voice_freq", Min: 130, Max: 500, IsInt: true},
		)
	}

	// Seed from the duration ratio, the analytic first guess.
	initSpeed := clamp(float64(in.Frames())/math.Max(1, float64(ref.Frames())), *minSpeed, *maxSpeed)
	init := candidate{Vals: make([]float64, len(defs))}
	init.Vals[0] = initSpeed
	if *fitBounds {
		init.Vals[1] = 65
		init.Vals[2] = 400
	}

	state := &fitState{}
	var evals int64

	objective := func(pos []float64) float64 {
		if atomic.AddInt64(&evals, 1) > int64(*maxEvals) {
			return 2.0
		}
		cand := fromNormalized(pos, defs)
		metrics, err := evaluate(cand, defs, in.SampleRate, inMono, refMono)
		if err != nil {
			return 1.8
		}

		state.mu.Lock()
		if !state.hasBest || metrics.Score < state.bestFit.Score {
			state.best = cloneCandidate(cand)
			state.bestFit = metrics
			state.hasBest = true
			fmt.Printf("Improved: eval=%d speed=%.4f score=%.4f sim=%.2f%%\n",
				atomic.LoadInt64(&evals), cand.Vals[0], metrics.Score, metrics.Similarity*100.0)
		}
		state.mu.Unlock()
		return metrics.Score
	}

	// Always evaluate the analytic guess first so the optimizer can only
	// improve on it.
	objective(toNormalized(init, defs))

	cfg, err := newMayflyConfig(strings.ToLower(*variant), *pop, len(defs), maxIters(*maxEvals, *pop))
	if err != nil {
		die("%v", err)
	}
	cfg.Rand = rand.New(rand.NewSource(*seed))
	cfg.ObjectiveFunc = objective
	if _, err := runMayfly(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "optimizer failed: %v\n", err)
	}

	state.mu.Lock()
	best := state.best
	bestFit := state.bestFit
	hasBest := state.hasBest
	state.mu.Unlock()
	if !hasBest {
		die("no successful evaluation")
	}

	fmt.Printf("Best speed: %.4f (score %.4f, similarity %.2f%%, duration ratio %.4f)\n",
		best.Vals[0], bestFit.Score, bestFit.Similarity*100.0, bestFit.DurationRatio)
	if *fitBounds {
		fmt.Printf("Best bounds: %d-%d Hz\n", int(best.Vals[1]), int(best.Vals[2]))
	}

	if *outputPath != "" {
		if err := writeBest(*outputPath, best, defs, in); err != nil {
			die("failed to write %s: %v", *outputPath, err)
		}
		fmt.Printf("Wrote %s\n", *outputPath)
	}
}

func paramsFor(cand candidate, defs []knobDef) *psola.Params {
	p := psola.NewDefaultParams()
	p.Speed = cand.Vals[0]
	for i, d := range defs {
		switch d.Name {
		case "min_voice_freq":
			p.MinVoiceFreq = int(cand.Vals[i])
		case "max_voice_freq":
			p.MaxVoiceFreq = int(cand.Vals[i])
		}
	}
	return p
}

func evaluate(cand candidate, defs []knobDef, sampleRate int, inMono []int16, refMono []float64) (analysis.Metrics, error) {
	params := paramsFor(cand, defs)
	out, err := psola.ChangeSpeed(sampleRate, params, inMono)
	if err != nil {
		return analysis.Metrics{}, err
	}
	return analysis.Compare(refMono, wavio.MonoMix(out, 1), sampleRate), nil
}

// writeBest reruns the best parameters over the full multi-channel input.
func writeBest(path string, best candidate, defs []knobDef, in *wavio.Signal) error {
	params := paramsFor(best, defs)
	channels := wavio.Deinterleave(in.Samples, in.NumChannels)
	outChannels := make([][]int16, len(channels))
	for c, ch := range channels {
		out, err := psola.ChangeSpeed(in.SampleRate, params, ch)
		if err != nil {
			return err
		}
		outChannels[c] = out
	}
	return wavio.WriteWAV(path, wavio.Interleave(outChannels), in.SampleRate, in.NumChannels)
}

func monoInt16(sig *wavio.Signal) []int16 {
	if sig.NumChannels == 1 {
		return sig.Samples
	}
	mono := wavio.MonoMix(sig.Samples, sig.NumChannels)
	out := make([]int16, len(mono))
	for i, v := range mono {
		out[i] = int16(math.Round(clamp(v*32767.0, -32768, 32767)))
	}
	return out
}

func newMayflyConfig(variant string, pop, dims, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func maxIters(maxEvals, pop int) int {
	return maxInt(1, maxEvals/(2*pop))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
