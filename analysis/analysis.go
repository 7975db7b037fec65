package analysis

// QuantumKind identifies a level of the rhythmic hierarchy.
type QuantumKind int

const (
	KindSection QuantumKind = iota
	KindBar
	KindBeat
	KindTatum
)

func (k QuantumKind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindBar:
		return "bar"
	case KindBeat:
		return "beat"
	case KindTatum:
		return "tatum"
	default:
		return "unknown"
	}
}

// None marks an absent link. All cross-references between quanta and segments
// are plain indexes into the arrays owned by TrackAnalysis.
const None = -1

// Segment is a fine-grained acoustic slice of the track. Segments are
// immutable once parsed.
type Segment struct {
	// Index is the position within the segment sequence.
	Index int `json:"index"`
	// Start is the starting point (in seconds) of the segment.
	Start float64 `json:"start"`
	// Duration is the duration (in seconds) of the segment.
	Duration float64 `json:"duration"`
	// Confidence, from 0.0 to 1.0, of the reliability of the segmentation.
	Confidence float64 `json:"confidence"`
	// LoudnessStart is the onset loudness of the segment in decibels (dB).
	LoudnessStart float64 `json:"loudness_start"`
	// LoudnessMax is the peak loudness of the segment in decibels (dB).
	LoudnessMax float64 `json:"loudness_max"`
	// LoudnessMaxTime is the offset (in seconds) at which the peak loudness occurs.
	LoudnessMaxTime float64 `json:"loudness_max_time"`
	// Pitches is a 12-dimensional chroma vector describing the relative
	// dominance of every pitch class.
	Pitches []float64 `json:"pitches"`
	// Timbre is a 12-dimensional vector of spectral surface coefficients.
	Timbre []float64 `json:"timbre"`
}

// End returns the end time of the segment in seconds.
func (s *Segment) End() float64 {
	return s.Start + s.Duration
}

// Quantum is a timed element of the rhythmic hierarchy: a section, bar, beat
// or tatum. Links to neighbors, parents, children and overlapping segments are
// indexes into the owning TrackAnalysis; None means no link.
type Quantum struct {
	Kind       QuantumKind `json:"-"`
	Index      int         `json:"index"`
	Start      float64     `json:"start"`
	Duration   float64     `json:"duration"`
	Confidence float64     `json:"confidence"`

	// Prev and Next are the neighbors at the same level.
	Prev int `json:"-"`
	Next int `json:"-"`

	// Parent is the quantum one level up whose interval contains this
	// quantum's start time. IndexInParent is this quantum's position among
	// the parent's children.
	Parent        int   `json:"-"`
	IndexInParent int   `json:"-"`
	Children      []int `json:"-"`

	// OverlappingSegments lists every segment whose interval intersects this
	// quantum's interval. PrimarySegment is the first segment starting at or
	// after this quantum's start.
	OverlappingSegments []int `json:"-"`
	PrimarySegment      int   `json:"-"`
}

// End returns the end time of the quantum in seconds.
func (q *Quantum) End() float64 {
	return q.Start + q.Duration
}

// TrackInfo carries optional track-level metadata.
type TrackInfo struct {
	Duration      float64 `json:"duration"`
	Tempo         float64 `json:"tempo"`
	TimeSignature int     `json:"time_signature"`
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
}

// TrackAnalysis is the fully parsed and linked analysis of one track. It owns
// one contiguous array per hierarchy level plus the segment sequence; all
// links elsewhere in the model are indexes into these arrays.
type TrackAnalysis struct {
	Sections []Quantum `json:"sections"`
	Bars     []Quantum `json:"bars"`
	Beats    []Quantum `json:"beats"`
	Tatums   []Quantum `json:"tatums"`
	Segments []Segment `json:"segments"`
	Track    TrackInfo `json:"track"`
}

// Level returns the quantum array for the given kind.
func (ta *TrackAnalysis) Level(kind QuantumKind) []Quantum {
	switch kind {
	case KindSection:
		return ta.Sections
	case KindBar:
		return ta.Bars
	case KindBeat:
		return ta.Beats
	case KindTatum:
		return ta.Tatums
	default:
		return nil
	}
}
