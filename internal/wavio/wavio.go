// Package wavio reads and writes 16-bit PCM WAV files and converts between
// interleaved and per-channel sample layouts. It is plumbing around the
// engine; the engine itself only ever sees flat []int16 channels.
package wavio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// Signal is a decoded audio file: interleaved samples plus format metadata.
type Signal struct {
	Samples     []int16
	SampleRate  int
	NumChannels int
}

// Frames reports the per-channel sample count.
func (s *Signal) Frames() int {
	if s.NumChannels < 1 {
		return 0
	}
	return len(s.Samples) / s.NumChannels
}

// ReadWAV decodes a WAV file into interleaved 16-bit samples.
func ReadWAV(path string) (*Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.SourceBitDepth > 16 {
		return nil, fmt.Errorf("unsupported bit depth %d in %s", buf.SourceBitDepth, path)
	}

	out := make([]int16, len(buf.Data))
	for i, f := range buf.Data {
		v := math.Round(float64(f) * 32768.0)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return &Signal{
		Samples:     out,
		SampleRate:  buf.Format.SampleRate,
		NumChannels: buf.Format.NumChannels,
	}, nil
}

// WriteWAV encodes interleaved 16-bit samples as a PCM WAV file.
func WriteWAV(path string, samples []int16, sampleRate, numChannels int) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, numChannels, 1)
	defer enc.Close()

	data := make([]float32, len(samples))
	for i, v := range samples {
		data[i] = float32(v) / 32768.0
	}
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: numChannels,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}

// Deinterleave splits interleaved samples into per-channel slices.
func Deinterleave(samples []int16, numChannels int) [][]int16 {
	if numChannels < 1 {
		return nil
	}
	frames := len(samples) / numChannels
	out := make([][]int16, numChannels)
	for c := 0; c < numChannels; c++ {
		ch := make([]int16, frames)
		for i := 0; i < frames; i++ {
			ch[i] = samples[i*numChannels+c]
		}
		out[c] = ch
	}
	return out
}

// Interleave merges per-channel slices, trimming every channel to the
// shortest one so frames stay aligned.
func Interleave(channels [][]int16) []int16 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) < frames {
			frames = len(ch)
		}
	}
	out := make([]int16, frames*len(channels))
	for c, ch := range channels {
		for i := 0; i < frames; i++ {
			out[i*len(channels)+c] = ch[i]
		}
	}
	return out
}

// MonoMix folds interleaved samples down to a single normalized float64
// channel in [-1, 1], for analysis.
func MonoMix(samples []int16, numChannels int) []float64 {
	if numChannels < 1 {
		return nil
	}
	frames := len(samples) / numChannels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < numChannels; c++ {
			sum += float64(samples[i*numChannels+c])
		}
		out[i] = sum / (float64(numChannels) * 32768.0)
	}
	return out
}
