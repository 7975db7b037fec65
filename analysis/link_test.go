package analysis

import "testing"

func linkedFixture(t *testing.T) *TrackAnalysis {
	t.Helper()
	ta, err := Parse([]byte(validPayload()))
	if err != nil {
		t.Fatalf("fixture parse failed: %v", err)
	}
	return ta
}

func TestLinkNeighbors(t *testing.T) {
	ta := linkedFixture(t)

	if ta.Beats[0].Prev != None {
		t.Errorf("first beat should have no prev, got %d", ta.Beats[0].Prev)
	}
	if ta.Beats[0].Next != 1 {
		t.Errorf("beat 0 next = %d, want 1", ta.Beats[0].Next)
	}
	if ta.Beats[3].Next != None {
		t.Errorf("last beat should have no next, got %d", ta.Beats[3].Next)
	}
	if ta.Beats[2].Prev != 1 {
		t.Errorf("beat 2 prev = %d, want 1", ta.Beats[2].Prev)
	}
}

func TestLinkParents(t *testing.T) {
	ta := linkedFixture(t)

	// Two bars of two beats each.
	wantParents := []int{0, 0, 1, 1}
	wantInParent := []int{0, 1, 0, 1}
	for i, beat := range ta.Beats {
		if beat.Parent != wantParents[i] {
			t.Errorf("beat %d parent = %d, want %d", i, beat.Parent, wantParents[i])
		}
		if beat.IndexInParent != wantInParent[i] {
			t.Errorf("beat %d index in parent = %d, want %d", i, beat.IndexInParent, wantInParent[i])
		}
	}
	if got := ta.Bars[0].Children; len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("bar 0 children = %v, want [0 1]", got)
	}
	if ta.Bars[0].Parent != 0 || ta.Bars[1].Parent != 0 {
		t.Errorf("bars should both belong to the single section")
	}
}

func TestLinkSegmentsAligned(t *testing.T) {
	ta := linkedFixture(t)

	for i, beat := range ta.Beats {
		if len(beat.OverlappingSegments) != 1 || beat.OverlappingSegments[0] != i {
			t.Errorf("beat %d overlapping = %v, want [%d]", i, beat.OverlappingSegments, i)
		}
		if beat.PrimarySegment != i {
			t.Errorf("beat %d primary = %d, want %d", i, beat.PrimarySegment, i)
		}
	}
}

func TestLinkSegmentSpanningTwoBeats(t *testing.T) {
	payload := `{
		"beats": [{"start": 0, "duration": 0.5}, {"start": 0.5, "duration": 0.5}],
		"segments": [{
			"start": 0.25, "duration": 0.5, "confidence": 1,
			"loudness_start": -20, "loudness_max": -5, "loudness_max_time": 0.1,
			"pitches": [0,0,0,0,0,0,0,0,0,0,0,0],
			"timbre": [0,0,0,0,0,0,0,0,0,0,0,0]
		}]
	}`
	ta, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if len(ta.Beats[i].OverlappingSegments) != 1 || ta.Beats[i].OverlappingSegments[0] != 0 {
			t.Errorf("beat %d overlapping = %v, want [0]", i, ta.Beats[i].OverlappingSegments)
		}
	}
	// The segment starts after beat 0's start, so it is beat 0's primary;
	// beat 1 has no segment starting inside it.
	if ta.Beats[0].PrimarySegment != 0 {
		t.Errorf("beat 0 primary = %d, want 0", ta.Beats[0].PrimarySegment)
	}
	if ta.Beats[1].PrimarySegment != None {
		t.Errorf("beat 1 primary = %d, want none", ta.Beats[1].PrimarySegment)
	}
}
