package analysis

// link establishes every intra-level and cross-level relationship after a
// parse: previous/next neighbors, parent/child containment, and
// quantum-to-segment overlap. Each pass is a single forward sweep with a
// monotonically advancing cursor, so linking is O(n+m) overall.
func (ta *TrackAnalysis) link() {
	linkNeighbors(ta.Sections)
	linkNeighbors(ta.Bars)
	linkNeighbors(ta.Beats)
	linkNeighbors(ta.Tatums)

	linkParents(ta.Sections, ta.Bars)
	linkParents(ta.Bars, ta.Beats)
	linkParents(ta.Beats, ta.Tatums)

	linkSegments(ta.Sections, ta.Segments)
	linkSegments(ta.Bars, ta.Segments)
	linkSegments(ta.Beats, ta.Segments)
	linkSegments(ta.Tatums, ta.Segments)
}

func linkNeighbors(quanta []Quantum) {
	for i := range quanta {
		if i > 0 {
			quanta[i].Prev = i - 1
		}
		if i < len(quanta)-1 {
			quanta[i].Next = i + 1
		}
	}
}

// linkParents attaches each child to the most recent parent whose interval
// contains the child's start time. Both arrays are time-ordered, so the
// parent cursor only ever moves forward.
func linkParents(parents, children []Quantum) {
	p := 0
	for c := range children {
		child := &children[c]
		for p < len(parents) && parents[p].End() <= child.Start {
			p++
		}
		if p >= len(parents) {
			break
		}
		parent := &parents[p]
		if parent.Start > child.Start {
			continue
		}
		child.Parent = p
		child.IndexInParent = len(parent.Children)
		parent.Children = append(parent.Children, c)
	}
}

// linkSegments attaches to each quantum every segment intersecting its
// interval, plus the first segment starting at or after its start. The base
// cursor is retained across quanta; the inner walk revisits only segments
// that genuinely span more than one quantum.
func linkSegments(quanta []Quantum, segments []Segment) {
	s := 0
	for q := range quanta {
		quantum := &quanta[q]
		for s < len(segments) && segments[s].End() <= quantum.Start {
			s++
		}
		for i := s; i < len(segments) && segments[i].Start < quantum.End(); i++ {
			quantum.OverlappingSegments = append(quantum.OverlappingSegments, i)
			if quantum.PrimarySegment == None && segments[i].Start >= quantum.Start {
				quantum.PrimarySegment = i
			}
		}
	}
}
