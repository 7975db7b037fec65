package jukebox

import (
	"encoding/json"
	"testing"

	"github.com/mager/jukebox/analysis"
)

// makeTrack builds a linked analysis with one beat per half second in bars of
// four, and one segment aligned with each beat. seeds[i] sets the first
// timbre coefficient of beat i's segment, so the distance between two beats
// in the same bar position is exactly |seeds[a]-seeds[b]| and beats in
// different positions are always penalized apart.
func makeTrack(t *testing.T, seeds []float64) *analysis.TrackAnalysis {
	t.Helper()

	type marker struct {
		Start      float64 `json:"start"`
		Duration   float64 `json:"duration"`
		Confidence float64 `json:"confidence"`
	}
	type segment struct {
		marker
		LoudnessStart   float64   `json:"loudness_start"`
		LoudnessMax     float64   `json:"loudness_max"`
		LoudnessMaxTime float64   `json:"loudness_max_time"`
		Pitches         []float64 `json:"pitches"`
		Timbre          []float64 `json:"timbre"`
	}

	n := len(seeds)
	beats := make([]marker, n)
	segments := make([]segment, n)
	for i := 0; i < n; i++ {
		beats[i] = marker{Start: 0.5 * float64(i), Duration: 0.5, Confidence: 1}
		timbre := make([]float64, 12)
		timbre[0] = seeds[i]
		segments[i] = segment{
			marker:          beats[i],
			LoudnessStart:   -20,
			LoudnessMax:     -5,
			LoudnessMaxTime: 0.1,
			Pitches:         make([]float64, 12),
			Timbre:          timbre,
		}
	}
	var bars []marker
	for start := 0.0; start < 0.5*float64(n); start += 2 {
		bars = append(bars, marker{Start: start, Duration: 2, Confidence: 1})
	}
	doc := map[string]any{
		"sections": []marker{{Start: 0, Duration: 0.5 * float64(n), Confidence: 1}},
		"bars":     bars,
		"beats":    beats,
		"tatums":   []marker{},
		"segments": segments,
		"track":    map[string]any{"duration": 0.5 * float64(n), "tempo": 120, "time_signature": 4},
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	ta, err := analysis.Parse(payload)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return ta
}

// twinSeeds is the 8-beat scenario: beats 2 and 6 identical, every other
// same-position pair hundreds apart.
func twinSeeds() []float64 {
	return []float64{0, 1000, 77, 2000, 300, 1500, 77, 2600}
}

func twinConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxBranches = 1
	cfg.BranchThreshold = 15
	cfg.AddLastEdge = false
	return cfg
}

// ladderSeeds gives beat i the seed 2i, so each same-position pair at beat
// span 4k is exactly 8k apart.
func ladderSeeds(n int) []float64 {
	seeds := make([]float64, n)
	for i := range seeds {
		seeds[i] = 2 * float64(i)
	}
	return seeds
}

func activeContains(g *Graph, beat, id int) bool {
	for _, have := range g.active[beat] {
		if have == id {
			return true
		}
	}
	return false
}
