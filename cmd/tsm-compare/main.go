package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-tsm/analysis"
	"github.com/cwbudde/algo-tsm/internal/wavio"
)

func main() {
	referencePath := flag.String("reference", "", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	if *referencePath == "" || *candidatePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: tsm-compare -reference ref.wav -candidate cand.wav [-json]\n")
		os.Exit(2)
	}

	ref, err := readMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	cand, sampleRate, err := readMonoWithRate(*candidatePath)
	if err != nil {
		die("failed to read candidate: %v", err)
	}

	metrics := analysis.Compare(ref, cand, sampleRate)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("encode metrics: %v", err)
		}
		return
	}

	fmt.Printf("reference: %d frames   candidate: %d frames   duration ratio %.4f\n",
		metrics.ReferenceFrames, metrics.CandidateFrames, metrics.DurationRatio)
	fmt.Printf("rms:       ref %.5f  cand %.5f  ratio %.4f\n",
		metrics.RefRMS, metrics.CandRMS, metrics.RMSRatio)
	fmt.Printf("f0 (fft):  ref %.1f Hz  cand %.1f Hz\n",
		metrics.RefFundamentalHz, metrics.CandFundamentalHz)
	fmt.Printf("f0 (zc):   ref %.1f Hz  cand %.1f Hz\n",
		metrics.RefZeroCrossHz, metrics.CandZeroCrossHz)
	fmt.Printf("envelope:  %.2f dB RMSE\n", metrics.EnvelopeRMSEDB)
	fmt.Printf("score:     %.4f   similarity: %.2f%%\n", metrics.Score, metrics.Similarity*100.0)
}

func readMono(path string) ([]float64, error) {
	x, _, err := readMonoWithRate(path)
	return x, err
}

func readMonoWithRate(path string) ([]float64, int, error) {
	sig, err := wavio.ReadWAV(path)
	if err != nil {
		return nil, 0, err
	}
	return wavio.MonoMix(sig.Samples, sig.NumChannels), sig.SampleRate, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
