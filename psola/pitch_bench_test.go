package psola

import (
	"fmt"
	"testing"
)

func BenchmarkEstimatorEstimate(b *testing.B) {
	samples := make([]int16, 4*testRate)
	for i := range samples {
		samples[i] = int16((i*2654435761+12345)%20000 - 10000)
	}

	for _, workers := range []int{1, 2, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			est := NewEstimator(20, 123, workers)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = est.Estimate(samples, 2000, Estimate{})
			}
		})
	}
}

func BenchmarkStreamRun(b *testing.B) {
	samples := make([]int16, testRate)
	for i := range samples {
		samples[i] = int16(i*37%16000 - 8000)
	}
	params := NewDefaultParams()
	params.Speed = 1.5

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s, err := NewStream(testRate, params, samples)
		if err != nil {
			b.Fatal(err)
		}
		if err := s.Run(); err != nil {
			b.Fatal(err)
		}
	}
}
