package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/cwbudde/algo-tsm/internal/wavio"
	"github.com/cwbudde/algo-tsm/profile"
	"github.com/cwbudde/algo-tsm/psola"
)

func main() {
	minFreq := flag.Int("min-freq", 0, "Minimum expected voice frequency in Hz (overrides profile)")
	maxFreq := flag.Int("max-freq", 0, "Maximum expected voice frequency in Hz (overrides profile)")
	profileName := flag.String("profile", "voice", "Built-in profile: \"voice\" (65-400 Hz) or \"low-voice\" (65-135 Hz)")
	profilePath := flag.String("profile-file", "", "Profile JSON file path (overrides -profile)")
	stepPolicy := flag.String("step", "full", "Step policy: \"full\" or \"half\" period per step")
	precision := flag.String("precision", "double", "Frame precision: \"double\" or \"single\"")
	legacyClamp := flag.Bool("legacy-clamp", false, "Clamp output to the asymmetric +/-32767 range")
	workers := flag.Int("workers", 1, "Goroutines for the period search")
	quiet := flag.Bool("quiet", false, "Suppress progress output")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 3 {
		usage()
		os.Exit(2)
	}

	speed, err := strconv.ParseFloat(flag.Arg(0), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid speed %q: %v\n", flag.Arg(0), err)
		os.Exit(2)
	}
	inPath := flag.Arg(1)
	outPath := flag.Arg(2)

	params, err := buildParams(*profileName, *profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	params.Speed = speed
	if *minFreq > 0 {
		params.MinVoiceFreq = *minFreq
	}
	if *maxFreq > 0 {
		params.MaxVoiceFreq = *maxFreq
	}
	switch *stepPolicy {
	case "full":
		params.StepPolicy = psola.StepFullPeriod
	case "half":
		params.StepPolicy = psola.StepHalfPeriod
	default:
		fmt.Fprintf(os.Stderr, "invalid -step %q\n", *stepPolicy)
		os.Exit(2)
	}
	switch *precision {
	case "double":
		params.Precision = psola.PrecisionDouble
	case "single":
		params.Precision = psola.PrecisionSingle
	default:
		fmt.Fprintf(os.Stderr, "invalid -precision %q\n", *precision)
		os.Exit(2)
	}
	params.LegacyClamp = *legacyClamp
	if *workers > 0 {
		params.SearchWorkers = *workers
	}

	in, err := wavio.ReadWAV(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", inPath, err)
		os.Exit(1)
	}
	if err := params.Validate(in.SampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if errors.Is(err, psola.ErrInvalidSpeed) || errors.Is(err, psola.ErrInvalidFreqRange) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	if !*quiet {
		fmt.Printf("Length = %d frames, sample rate = %d Hz, channels = %d\n",
			in.Frames(), in.SampleRate, in.NumChannels)
	}

	channels := wavio.Deinterleave(in.Samples, in.NumChannels)
	outChannels := make([][]int16, len(channels))
	for c, ch := range channels {
		out, err := psola.ChangeSpeed(in.SampleRate, params, ch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "channel %d: %v\n", c, err)
			os.Exit(1)
		}
		outChannels[c] = out
	}
	outSamples := wavio.Interleave(outChannels)

	if err := wavio.WriteWAV(outPath, outSamples, in.SampleRate, in.NumChannels); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", outPath, err)
		os.Exit(1)
	}

	if !*quiet {
		fmt.Printf("Wrote %s (%d frames, speed %gx)\n",
			outPath, len(outSamples)/in.NumChannels, speed)
	}
}

func buildParams(name, path string) (*psola.Params, error) {
	if path != "" {
		return profile.LoadJSON(path)
	}
	return profile.Named(name)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: tsm-adjust [flags] speed input.wav output.wav\n\n")
	fmt.Fprintf(os.Stderr, "Changes playback speed while preserving pitch. Speed > 1 speeds up,\nspeed in (0,1) slows down.\n\nFlags:\n")
	flag.PrintDefaults()
}
