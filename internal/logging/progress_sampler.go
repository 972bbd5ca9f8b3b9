package logging

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when percentage buckets change. It is not safe for concurrent use; each
// copy loop owns its own sampler.
type ProgressSampler struct {
	bucketSize float64
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 10%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event for current/max bytes should be
// logged. A non-positive max is treated as complete.
func (s *ProgressSampler) ShouldLog(current, max int64) bool {
	if s == nil {
		return true
	}
	percent := 100.0
	if max > 0 {
		percent = float64(current) / float64(max) * 100
	}
	bucket := int(percent / s.bucketSize)
	if percent >= 100 {
		bucket = int(100 / s.bucketSize)
	}
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
}
