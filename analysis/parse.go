package analysis

import (
	"encoding/json"
	"fmt"
	"math"
)

// ParseError reports a malformed or missing field in the analysis payload.
// Path identifies the offending field, e.g. "beats[12].pitches".
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("analysis: invalid field %s: %s", e.Path, e.Reason)
}

// minVectorLen is the required dimensionality of pitch and timbre vectors.
const minVectorLen = 12

type rawQuantum struct {
	Start      *float64 `json:"start"`
	Duration   *float64 `json:"duration"`
	Confidence *float64 `json:"confidence"`
}

type rawSegment struct {
	Start           *float64  `json:"start"`
	Duration        *float64  `json:"duration"`
	Confidence      *float64  `json:"confidence"`
	LoudnessStart   *float64  `json:"loudness_start"`
	LoudnessMax     *float64  `json:"loudness_max"`
	LoudnessMaxTime *float64  `json:"loudness_max_time"`
	Pitches         []float64 `json:"pitches"`
	Timbre          []float64 `json:"timbre"`
}

type rawTrack struct {
	Duration      float64 `json:"duration"`
	Tempo         float64 `json:"tempo"`
	TimeSignature int     `json:"time_signature"`
}

type rawDocument struct {
	Analysis *rawDocument `json:"analysis"`
	Sections []rawQuantum `json:"sections"`
	Bars     []rawQuantum `json:"bars"`
	Beats    []rawQuantum `json:"beats"`
	Tatums   []rawQuantum `json:"tatums"`
	Segments []rawSegment `json:"segments"`
	Track    *rawTrack    `json:"track"`
}

// Parse decodes a raw analysis payload into a fully linked TrackAnalysis. The
// payload may carry the analysis arrays at the top level or nested under an
// "analysis" key. Validation fails fast with a *ParseError naming the
// offending field path; nothing is ever silently defaulted.
func Parse(payload []byte) (*TrackAnalysis, error) {
	return ParseTrack(payload, "", "")
}

// ParseTrack is Parse with out-of-band title and artist metadata attached to
// the result.
func ParseTrack(payload []byte, title, artist string) (*TrackAnalysis, error) {
	var doc rawDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, &ParseError{Path: "$", Reason: err.Error()}
	}
	if doc.Beats == nil && doc.Segments == nil && doc.Analysis != nil {
		doc = *doc.Analysis
	}

	ta := &TrackAnalysis{}
	var err error
	if ta.Sections, err = parseLevel(KindSection, "sections", doc.Sections); err != nil {
		return nil, err
	}
	if ta.Bars, err = parseLevel(KindBar, "bars", doc.Bars); err != nil {
		return nil, err
	}
	if ta.Beats, err = parseLevel(KindBeat, "beats", doc.Beats); err != nil {
		return nil, err
	}
	if ta.Tatums, err = parseLevel(KindTatum, "tatums", doc.Tatums); err != nil {
		return nil, err
	}
	if ta.Segments, err = parseSegments(doc.Segments); err != nil {
		return nil, err
	}
	if doc.Track != nil {
		ta.Track = TrackInfo{
			Duration:      doc.Track.Duration,
			Tempo:         doc.Track.Tempo,
			TimeSignature: doc.Track.TimeSignature,
		}
	}
	ta.Track.Title = title
	ta.Track.Artist = artist

	ta.link()
	return ta, nil
}

func parseLevel(kind QuantumKind, field string, raw []rawQuantum) ([]Quantum, error) {
	quanta := make([]Quantum, len(raw))
	for i, r := range raw {
		start, err := requireNumber(fmt.Sprintf("%s[%d].start", field, i), r.Start)
		if err != nil {
			return nil, err
		}
		duration, err := requireNumber(fmt.Sprintf("%s[%d].duration", field, i), r.Duration)
		if err != nil {
			return nil, err
		}
		q := Quantum{
			Kind:           kind,
			Index:          i,
			Start:          start,
			Duration:       duration,
			Prev:           None,
			Next:           None,
			Parent:         None,
			IndexInParent:  None,
			PrimarySegment: None,
		}
		if r.Confidence != nil {
			q.Confidence = *r.Confidence
		}
		quanta[i] = q
	}
	return quanta, nil
}

func parseSegments(raw []rawSegment) ([]Segment, error) {
	segments := make([]Segment, len(raw))
	for i, r := range raw {
		path := func(f string) string { return fmt.Sprintf("segments[%d].%s", i, f) }
		start, err := requireNumber(path("start"), r.Start)
		if err != nil {
			return nil, err
		}
		duration, err := requireNumber(path("duration"), r.Duration)
		if err != nil {
			return nil, err
		}
		confidence, err := requireNumber(path("confidence"), r.Confidence)
		if err != nil {
			return nil, err
		}
		loudStart, err := requireNumber(path("loudness_start"), r.LoudnessStart)
		if err != nil {
			return nil, err
		}
		loudMax, err := requireNumber(path("loudness_max"), r.LoudnessMax)
		if err != nil {
			return nil, err
		}
		loudMaxTime, err := requireNumber(path("loudness_max_time"), r.LoudnessMaxTime)
		if err != nil {
			return nil, err
		}
		if len(r.Pitches) < minVectorLen {
			return nil, &ParseError{Path: path("pitches"), Reason: fmt.Sprintf("need at least %d elements, got %d", minVectorLen, len(r.Pitches))}
		}
		if len(r.Timbre) < minVectorLen {
			return nil, &ParseError{Path: path("timbre"), Reason: fmt.Sprintf("need at least %d elements, got %d", minVectorLen, len(r.Timbre))}
		}
		segments[i] = Segment{
			Index:           i,
			Start:           start,
			Duration:        duration,
			Confidence:      confidence,
			LoudnessStart:   loudStart,
			LoudnessMax:     loudMax,
			LoudnessMaxTime: loudMaxTime,
			Pitches:         r.Pitches,
			Timbre:          r.Timbre,
		}
	}
	return segments, nil
}

func requireNumber(path string, v *float64) (float64, error) {
	if v == nil {
		return 0, &ParseError{Path: path, Reason: "missing required numeric field"}
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, &ParseError{Path: path, Reason: "value is not a finite number"}
	}
	return *v, nil
}
