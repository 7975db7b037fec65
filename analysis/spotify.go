package analysis

import (
	"fmt"

	spot "github.com/zmb3/spotify/v2"
)

// FromSpotify builds a linked TrackAnalysis from an audio analysis fetched
// through the Spotify Web API, attaching out-of-band title and artist. The
// API guarantees most of the shape, so validation is limited to the vector
// dimensions the similarity metric depends on.
func FromSpotify(aa *spot.AudioAnalysis, title, artist string) (*TrackAnalysis, error) {
	if aa == nil {
		return nil, &ParseError{Path: "$", Reason: "nil audio analysis"}
	}

	ta := &TrackAnalysis{
		Sections: make([]Quantum, len(aa.Sections)),
		Bars:     markersToQuanta(KindBar, aa.Bars),
		Beats:    markersToQuanta(KindBeat, aa.Beats),
		Tatums:   markersToQuanta(KindTatum, aa.Tatums),
		Segments: make([]Segment, len(aa.Segments)),
		Track: TrackInfo{
			Duration:      aa.Track.Duration,
			Tempo:         aa.Track.Tempo,
			TimeSignature: int(aa.Track.TimeSignature),
			Title:         title,
			Artist:        artist,
		},
	}

	for i, s := range aa.Sections {
		ta.Sections[i] = newQuantum(KindSection, i, s.Start, s.Duration, s.Confidence)
	}
	for i, s := range aa.Segments {
		if len(s.Pitches) < minVectorLen {
			return nil, &ParseError{Path: fmt.Sprintf("segments[%d].pitches", i), Reason: fmt.Sprintf("need at least %d elements, got %d", minVectorLen, len(s.Pitches))}
		}
		if len(s.Timbre) < minVectorLen {
			return nil, &ParseError{Path: fmt.Sprintf("segments[%d].timbre", i), Reason: fmt.Sprintf("need at least %d elements, got %d", minVectorLen, len(s.Timbre))}
		}
		ta.Segments[i] = Segment{
			Index:           i,
			Start:           s.Start,
			Duration:        s.Duration,
			Confidence:      s.Confidence,
			LoudnessStart:   s.LoudnessStart,
			LoudnessMax:     s.LoudnessMax,
			LoudnessMaxTime: s.LoudnessMaxTime,
			Pitches:         s.Pitches,
			Timbre:          s.Timbre,
		}
	}

	ta.link()
	return ta, nil
}

func markersToQuanta(kind QuantumKind, markers []spot.Marker) []Quantum {
	quanta := make([]Quantum, len(markers))
	for i, m := range markers {
		quanta[i] = newQuantum(kind, i, m.Start, m.Duration, m.Confidence)
	}
	return quanta
}

func newQuantum(kind QuantumKind, index int, start, duration, confidence float64) Quantum {
	return Quantum{
		Kind:           kind,
		Index:          index,
		Start:          start,
		Duration:       duration,
		Confidence:     confidence,
		Prev:           None,
		Next:           None,
		Parent:         None,
		IndexInParent:  None,
		PrimarySegment: None,
	}
}
