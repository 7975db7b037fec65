package jukebox

import (
	"math"

	"github.com/mager/jukebox/analysis"
)

// MaxDistance is the penalty substituted for incomparable segment pairs and
// for beats in a different position within their bar. It doubles as the
// "maximally dissimilar" constant throughout the builder.
const MaxDistance = 100.0

// Weights of the similarity metric. Duration dominates so that a jump never
// lands mid-segment-shape.
const (
	weightTimbre     = 1.0
	weightPitch      = 10.0
	weightLoudStart  = 1.0
	weightLoudMax    = 1.0
	weightDuration   = 100.0
	weightConfidence = 1.0
)

// SegmentDistance returns the weighted acoustic distance between two
// segments. Lower is more similar. Identity between segments is not
// special-cased here; the builder penalizes same-segment comparisons itself.
func SegmentDistance(a, b *analysis.Segment) float64 {
	return weightTimbre*euclidean(a.Timbre, b.Timbre) +
		weightPitch*euclidean(a.Pitches, b.Pitches) +
		weightLoudStart*math.Abs(a.LoudnessStart-b.LoudnessStart) +
		weightLoudMax*math.Abs(a.LoudnessMax-b.LoudnessMax) +
		weightDuration*math.Abs(a.Duration-b.Duration) +
		weightConfidence*math.Abs(a.Confidence-b.Confidence)
}

// euclidean is the L2 distance over the first 12 dimensions.
func euclidean(a, b []float64) float64 {
	var sum float64
	for i := 0; i < 12; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
