package analysis

import (
	"math"

	approx "github.com/cwbudde/algo-approx"
	timestats "github.com/cwbudde/algo-dsp/stats/time"
	algofft "github.com/cwbudde/algo-fft"
)

// Metrics contains objective measurements between a reference recording and
// a time-scaled candidate. The candidate is expected to differ in duration,
// so all waveform comparisons are made on time-normalized envelopes rather
// than by sample alignment.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`

	DurationRatio float64 `json:"duration_ratio"` // candidate / reference

	RefRMS   float64 `json:"ref_rms"`
	CandRMS  float64 `json:"cand_rms"`
	RMSRatio float64 `json:"rms_ratio"`

	RefFundamentalHz  float64 `json:"ref_fundamental_hz"`
	CandFundamentalHz float64 `json:"cand_fundamental_hz"`

	RefZeroCrossHz  float64 `json:"ref_zero_cross_hz"`
	CandZeroCrossHz float64 `json:"cand_zero_cross_hz"`

	EnvelopeRMSEDB float64 `json:"envelope_rmse_db"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Compare returns distance metrics and a combined score in [0,1], where 0 is
// a perfect match. A pitch-preserving speed change at factor k against its
// own input should show DurationRatio near 1/k, matching fundamentals, and a
// small envelope error.
func Compare(reference, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
	}
	if sampleRate <= 0 || len(reference) == 0 || len(candidate) == 0 {
		m.Score = 1.0
		return m
	}

	m.DurationRatio = float64(len(candidate)) / float64(len(reference))

	refStats := timestats.Calculate(reference)
	candStats := timestats.Calculate(candidate)
	m.RefRMS = refStats.RMS
	m.CandRMS = candStats.RMS
	if refStats.RMS > 1e-12 {
		m.RMSRatio = candStats.RMS / refStats.RMS
	}

	m.RefZeroCrossHz = zeroCrossRate(refStats.ZeroCrossings, len(reference), sampleRate)
	m.CandZeroCrossHz = zeroCrossRate(candStats.ZeroCrossings, len(candidate), sampleRate)

	m.RefFundamentalHz = FundamentalHz(reference, sampleRate, 40, 1000)
	m.CandFundamentalHz = FundamentalHz(candidate, sampleRate, 40, 1000)

	m.EnvelopeRMSEDB = envelopeRMSEDB(reference, candidate)

	durNorm := clamp01(math.Abs(math.Log2(m.DurationRatio)) / 2.0)
	rmsNorm := 1.0
	if m.RMSRatio > 0 {
		rmsNorm = clamp01(math.Abs(20.0*math.Log10(m.RMSRatio)) / 30.0)
	}
	fundNorm := 1.0
	if m.RefFundamentalHz > 0 && m.CandFundamentalHz > 0 {
		fundNorm = clamp01(math.Abs(math.Log2(m.CandFundamentalHz / m.RefFundamentalHz)))
	}
	envNorm := clamp01(m.EnvelopeRMSEDB / 30.0)

	m.Score = clamp01(0.35*durNorm + 0.25*fundNorm + 0.20*envNorm + 0.20*rmsNorm)
	m.Similarity = clamp01(float64(approx.FastExp(float32(-4.0 * m.Score))))

	return m
}

// FundamentalHz estimates the dominant fundamental inside [loHz, hiHz] from
// the magnitude peak of a Hann-windowed FFT of the signal's first analysis
// window.
func FundamentalHz(x []float64, sampleRate int, loHz, hiHz float64) float64 {
	fftSize := 8192
	for fftSize > len(x) {
		fftSize /= 2
	}
	if fftSize < 256 {
		return 0
	}

	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return 0
	}

	buf := make([]float64, fftSize)
	for i := 0; i < fftSize; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
		buf[i] = x[i] * w
	}
	spec := make([]complex128, fftSize/2+1)
	plan.Forward(spec, buf)

	binHz := float64(sampleRate) / float64(fftSize)
	minBin := int(loHz / binHz)
	if minBin < 1 {
		minBin = 1
	}
	maxBin := int(hiHz / binHz)
	if maxBin > fftSize/2 {
		maxBin = fftSize / 2
	}
	if minBin >= maxBin {
		return 0
	}

	bestBin := 0
	bestMag := 0.0
	for k := minBin; k <= maxBin; k++ {
		mag := math.Hypot(real(spec[k]), imag(spec[k]))
		if mag > bestMag {
			bestMag = mag
			bestBin = k
		}
	}
	if bestBin == 0 || bestMag < 1e-9 {
		return 0
	}
	return float64(bestBin) * binHz
}

// zeroCrossRate converts a zero-crossing count into an equivalent frequency.
func zeroCrossRate(crossings, frames, sampleRate int) float64 {
	if frames < 2 || crossings == 0 {
		return 0
	}
	duration := float64(frames) / float64(sampleRate)
	return float64(crossings) / (2.0 * duration)
}

// envelopeRMSEDB compares RMS envelopes after resampling the candidate
// envelope onto the reference envelope's time base, making the measure
// insensitive to the duration change itself.
func envelopeRMSEDB(ref, cand []float64) float64 {
	refEnv := rmsEnvelope(ref, 256, 128)
	candEnv := rmsEnvelope(cand, 256, 128)
	if len(refEnv) < 2 || len(candEnv) < 2 {
		return 0
	}

	var sum float64
	n := len(refEnv)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1) * float64(len(candEnv)-1)
		j := int(t)
		frac := t - float64(j)
		c := candEnv[j]
		if j+1 < len(candEnv) {
			c = (1-frac)*candEnv[j] + frac*candEnv[j+1]
		}
		d := linToDB(refEnv[i]) - linToDB(c)
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func rmsEnvelope(x []float64, frame, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		var sum float64
		for _, v := range x[start : start+frame] {
			sum += v * v
		}
		out[i] = math.Sqrt(sum / float64(frame))
	}
	return out
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
