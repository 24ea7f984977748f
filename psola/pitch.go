package psola

import "sync"

// Estimate is the result of one pitch-period search.
type Estimate struct {
	// Period is the best-matching pitch period in samples, always inside
	// [minPeriod, maxPeriod].
	Period int
	// Voiced reports whether the window shows strong periodic structure.
	Voiced bool
}

// Estimator finds the local pitch period of a sample window. It is a pure
// function of its inputs; the previous estimate only narrows the search
// range.
type Estimator struct {
	minPeriod int
	maxPeriod int
	workers   int
}

// NewEstimator creates an estimator for the given period bounds.
func NewEstimator(minPeriod, maxPeriod, workers int) *Estimator {
	if workers < 1 {
		workers = 1
	}
	return &Estimator{minPeriod: minPeriod, maxPeriod: maxPeriod, workers: workers}
}

// searchResult is one contiguous chunk of the candidate search, mergeable in
// ascending-period order without changing the tie-break.
type searchResult struct {
	bestPeriod int
	minDiff    int64
	ratioSum   float64
	candidates int
}

// Estimate returns the best-matching period around samples[at]. The window
// must expose at least maxPeriod valid samples on either side of at; the
// signal's zero guard regions satisfy this at every driver position.
//
// If the previous step was voiced the search narrows to
// [prev*2/3, prev*3/2], clipped to the configured bounds. A degenerate
// window where no candidate improves on the initial sentinel yields
// minPeriod, unvoiced.
func (e *Estimator) Estimate(samples []int16, at int, prev Estimate) Estimate {
	lo, hi := e.minPeriod, e.maxPeriod
	if prev.Voiced && prev.Period > 0 {
		if n := prev.Period * 2 / 3; n > lo {
			lo = n
		}
		if n := prev.Period * 3 / 2; n < hi {
			hi = n
		}
	}

	var res searchResult
	if e.workers > 1 && hi-lo+1 >= 2*e.workers {
		res = e.searchParallel(samples, at, lo, hi)
	} else {
		res = searchRange(samples, at, lo, hi)
	}

	if res.bestPeriod == 0 {
		// Constant window: every diff was zero and nothing beat the sentinel.
		return Estimate{Period: e.minPeriod, Voiced: false}
	}

	aveDiff := res.ratioSum / float64(res.candidates)
	voiced := float64(res.minDiff)/float64(res.bestPeriod) <= aveDiff/2 && aveDiff > 100
	return Estimate{Period: res.bestPeriod, Voiced: voiced}
}

// searchRange scans candidate periods [lo, hi] with the normalized
// absolute-difference metric. The winning period minimizes diff(p)/p; the
// comparison diff*best < minDiff*p avoids the division and keeps the
// smallest qualifying period on ties.
func searchRange(samples []int16, at, lo, hi int) searchResult {
	res := searchResult{minDiff: 1}
	for p := lo; p <= hi; p++ {
		var diff int64
		for i := 0; i < p; i++ {
			d := int64(samples[at+i]) - int64(samples[at-p+i])
			if d < 0 {
				d = -d
			}
			diff += d
		}
		if diff*int64(res.bestPeriod) < res.minDiff*int64(p) {
			res.minDiff = diff
			res.bestPeriod = p
		}
		res.ratioSum += float64(diff) / float64(p)
		res.candidates++
	}
	return res
}

// searchParallel splits [lo, hi] into contiguous chunks, one per worker, and
// merges chunk results in ascending-period order so the smallest qualifying
// period still wins ties.
func (e *Estimator) searchParallel(samples []int16, at, lo, hi int) searchResult {
	n := hi - lo + 1
	workers := e.workers
	if workers > n {
		workers = n
	}
	chunks := make([]searchResult, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		cLo := lo + w*n/workers
		cHi := lo + (w+1)*n/workers - 1
		wg.Add(1)
		go func(idx, cLo, cHi int) {
			defer wg.Done()
			chunks[idx] = searchRange(samples, at, cLo, cHi)
		}(w, cLo, cHi)
	}
	wg.Wait()

	merged := searchResult{minDiff: 1}
	for _, c := range chunks {
		if c.bestPeriod != 0 &&
			c.minDiff*int64(merged.bestPeriod) < merged.minDiff*int64(c.bestPeriod) {
			merged.minDiff = c.minDiff
			merged.bestPeriod = c.bestPeriod
		}
		merged.ratioSum += c.ratioSum
		merged.candidates += c.candidates
	}
	return merged
}
