package jukebox

import (
	"sort"

	"github.com/mager/jukebox/analysis"
	"go.uber.org/zap"
)

// maxReachPasses bounds the reach fixed-point iteration on pathological
// inputs; well-formed graphs converge long before it.
const maxReachPasses = 1000

// Edge is a directed candidate jump between two beats. IDs are dense,
// assigned once when the candidate pool is computed, and never reused.
type Edge struct {
	ID       int     `json:"id"`
	Source   int     `json:"source"`
	Dest     int     `json:"dest"`
	Distance float64 `json:"distance"`
	// Deleted marks a user-driven soft deletion; it survives rebuilds until
	// explicitly cleared.
	Deleted bool `json:"deleted"`
}

// State is the derived, rebuildable result of one graph pass.
type State struct {
	// ComputedThreshold is the similarity threshold actually applied.
	ComputedThreshold float64 `json:"computed_threshold"`
	// CurrentThreshold echoes the configured threshold (0 = auto).
	CurrentThreshold float64 `json:"current_threshold"`
	// LastBranchPoint is the beat beyond which no active branch may point.
	LastBranchPoint int `json:"last_branch_point"`
	// LastBranchPointReach is the normalized reach of that beat.
	LastBranchPointReach float64 `json:"last_branch_point_reach"`
	TotalBeats           int     `json:"total_beats"`
	// LongestBackwardBranch is the longest backward span among active edges,
	// as a percentage of the total beat count.
	LongestBackwardBranch float64 `json:"longest_backward_branch"`
	// Edges is the full pool, soft-deleted edges included, so edits stay
	// reversible.
	Edges []Edge `json:"edges"`
}

// Graph owns the edge pool and the per-beat candidate and active edge lists
// for one track. The candidate pool is computed once per track; everything
// else is recomputed wholesale by Rebuild.
type Graph struct {
	log   *zap.SugaredLogger
	track *analysis.TrackAnalysis
	cfg   Config

	edges      []*Edge
	candidates [][]int
	active     [][]int
	reach      []int
	state      State
}

// NewGraph runs the one-time nearest-neighbor search over every beat pair and
// an initial Rebuild. The candidate search is O(n²) over beats and is never
// repeated for config edits.
func NewGraph(track *analysis.TrackAnalysis, cfg Config, log *zap.SugaredLogger) *Graph {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	g := &Graph{
		log:   log,
		track: track,
		cfg:   cfg,
	}
	g.computeCandidates()
	g.Rebuild()
	return g
}

// Config returns the current policy.
func (g *Graph) Config() Config {
	return g.cfg
}

// SetConfig replaces the policy. Filtering-relevant changes take effect on
// the next Rebuild.
func (g *Graph) SetConfig(cfg Config) {
	g.cfg = cfg
}

// State returns the snapshot of the latest rebuild.
func (g *Graph) State() State {
	return g.state
}

// DeleteEdge soft-deletes an edge by id. Unknown ids are a no-op. The
// deletion takes effect on the next Rebuild.
func (g *Graph) DeleteEdge(id int) {
	if id < 0 || id >= len(g.edges) {
		g.log.Debugw("ignoring delete of unknown edge", "id", id)
		return
	}
	g.edges[id].Deleted = true
}

// ClearDeletedEdges undoes all soft deletions.
func (g *Graph) ClearDeletedEdges() {
	for _, e := range g.edges {
		e.Deleted = false
	}
}

func (g *Graph) computeCandidates() {
	beats := g.track.Beats
	g.candidates = make([][]int, len(beats))

	type candidate struct {
		dest     int
		distance float64
	}
	for i := range beats {
		if len(beats[i].OverlappingSegments) == 0 {
			continue
		}
		var found []candidate
		for j := range beats {
			if j == i {
				continue
			}
			d := g.beatDistance(i, j)
			if d > g.cfg.MaxBranchThreshold {
				continue
			}
			found = append(found, candidate{dest: j, distance: d})
		}
		sort.SliceStable(found, func(a, b int) bool {
			return found[a].distance < found[b].distance
		})
		if g.cfg.MaxBranches > 0 && len(found) > g.cfg.MaxBranches {
			found = found[:g.cfg.MaxBranches]
		}
		for _, c := range found {
			id := len(g.edges)
			g.edges = append(g.edges, &Edge{ID: id, Source: i, Dest: c.dest, Distance: c.distance})
			g.candidates[i] = append(g.candidates[i], id)
		}
	}
	g.log.Infow("computed candidate edges",
		"beats", len(beats),
		"edges", len(g.edges),
	)
}

// beatDistance sums the per-segment distances between the overlapping
// segments of two beats, averaged over the source beat's segment count.
// Missing or identical segments cost MaxDistance, as does a differing
// position within the parent bar.
func (g *Graph) beatDistance(i, j int) float64 {
	beats := g.track.Beats
	segments := g.track.Segments
	a, b := &beats[i], &beats[j]

	var sum float64
	for idx, sa := range a.OverlappingSegments {
		if idx >= len(b.OverlappingSegments) {
			sum += MaxDistance
			continue
		}
		sb := b.OverlappingSegments[idx]
		if sa == sb {
			sum += MaxDistance
			continue
		}
		sum += SegmentDistance(&segments[sa], &segments[sb])
	}
	d := sum / float64(len(a.OverlappingSegments))
	if a.IndexInParent != b.IndexInParent {
		d += MaxDistance
	}
	return d
}

// Rebuild re-derives the active edges, threshold and last branch point from
// the candidate pool, current config and deleted-edge set. It leaves the
// candidate pool untouched and is idempotent for unchanged inputs.
func (g *Graph) Rebuild() State {
	total := len(g.track.Beats)
	g.active = make([][]int, total)
	g.reach = make([]int, total)

	if total == 0 {
		g.state = State{
			CurrentThreshold: g.cfg.BranchThreshold,
			Edges:            g.edgeSnapshot(),
		}
		return g.state
	}

	minLong := g.cfg.MinLongBranch
	if minLong <= 0 {
		minLong = total / 5
	}

	threshold := g.cfg.BranchThreshold
	if threshold == 0 {
		threshold = g.calibrateThreshold(minLong)
	}
	for i := 0; i < total; i++ {
		g.active[i] = g.filteredEdges(i, threshold, minLong)
	}

	if g.cfg.AddLastEdge {
		if g.longestBackwardBranch() < 50 {
			g.insertBestBackwardBranch(threshold, 65)
		} else {
			g.insertBestBackwardBranch(threshold, 55)
		}
	}

	g.computeReach()
	last, lastReach := g.findLastBranchPoint(minLong)
	g.pruneTail(last)
	if g.cfg.RemoveSequentialDuplicates {
		g.removeSequentialDuplicates(last)
	}

	g.state = State{
		ComputedThreshold:     threshold,
		CurrentThreshold:      g.cfg.BranchThreshold,
		LastBranchPoint:       last,
		LastBranchPointReach:  lastReach,
		TotalBeats:            total,
		LongestBackwardBranch: g.longestBackwardBranch(),
		Edges:                 g.edgeSnapshot(),
	}
	g.log.Infow("rebuilt graph",
		"threshold", threshold,
		"last_branch_point", last,
		"active_edges", g.activeEdgeCount(),
	)
	return g.state
}

// calibrateThreshold scans candidate thresholds until enough beats retain at
// least one filtered edge, targeting one branching beat per six.
func (g *Graph) calibrateThreshold(minLong int) float64 {
	total := len(g.track.Beats)
	target := total / 6
	for threshold := 10.0; threshold < g.cfg.MaxBranchThreshold; threshold += 5 {
		branching := 0
		for i := 0; i < total; i++ {
			if len(g.filteredEdges(i, threshold, minLong)) > 0 {
				branching++
			}
		}
		if branching >= target {
			g.log.Infow("calibrated branch threshold",
				"threshold", threshold,
				"branching_beats", branching,
				"target", target,
			)
			return threshold
		}
	}
	return g.cfg.MaxBranchThreshold
}

func (g *Graph) filteredEdges(beat int, threshold float64, minLong int) []int {
	var out []int
	for _, id := range g.candidates[beat] {
		e := g.edges[id]
		if e.Deleted || e.Distance > threshold {
			continue
		}
		if g.cfg.BackwardOnly && e.Dest >= e.Source {
			continue
		}
		if g.cfg.LongBranchesOnly && abs(e.Source-e.Dest) < minLong {
			continue
		}
		out = append(out, id)
	}
	return out
}

// longestBackwardBranch returns the longest backward span among active
// edges, normalized as a percentage of the total beat count.
func (g *Graph) longestBackwardBranch() float64 {
	longest := 0
	for source, ids := range g.active {
		for _, id := range ids {
			if delta := source - g.edges[id].Dest; delta > longest {
				longest = delta
			}
		}
	}
	if len(g.track.Beats) == 0 {
		return 0
	}
	return float64(longest) * 100 / float64(len(g.track.Beats))
}

// insertBestBackwardBranch searches the full candidate pool for the backward
// edge with the largest normalized span under the distance ceiling. If the
// winner did not pass the threshold filter it is appended to its source
// beat's active edges anyway; this is the one path into the active set that
// bypasses the threshold, so a long loop back exists even on a strict
// threshold.
func (g *Graph) insertBestBackwardBranch(threshold, ceiling float64) {
	total := float64(len(g.track.Beats))
	best := -1
	bestSpan := 0.0
	for _, e := range g.edges {
		if e.Deleted {
			continue
		}
		delta := e.Source - e.Dest
		if delta <= 0 || e.Distance >= ceiling {
			continue
		}
		if span := float64(delta) * 100 / total; span > bestSpan {
			bestSpan = span
			best = e.ID
		}
	}
	if best < 0 {
		return
	}
	e := g.edges[best]
	if e.Distance > threshold {
		g.active[e.Source] = append(g.active[e.Source], best)
		g.log.Infow("reinforced long backward branch",
			"source", e.Source,
			"dest", e.Dest,
			"distance", e.Distance,
		)
	}
}

// computeReach runs the reach fixed point: each beat's reach is the maximum
// over its own value, every active-edge destination and the next beat, with
// increases propagated back to every earlier beat with a smaller value.
// Earlier beats always reach later ones through the natural forward chain,
// which is what makes the backward propagation sound.
func (g *Graph) computeReach() {
	total := len(g.track.Beats)
	for i := 0; i < total; i++ {
		g.reach[i] = total - i
	}
	for pass := 0; pass < maxReachPasses; pass++ {
		changes := 0
		for i := 0; i < total; i++ {
			changed := false
			for _, id := range g.active[i] {
				if r := g.reach[g.edges[id].Dest]; r > g.reach[i] {
					g.reach[i] = r
					changed = true
				}
			}
			if i < total-1 && g.reach[i+1] > g.reach[i] {
				g.reach[i] = g.reach[i+1]
				changed = true
			}
			if changed {
				changes++
				for j := 0; j < i; j++ {
					if g.reach[j] < g.reach[i] {
						g.reach[j] = g.reach[i]
					}
				}
			}
		}
		if changes == 0 {
			return
		}
	}
	g.log.Warnw("reach propagation hit the pass cap, keeping best-effort values",
		"passes", maxReachPasses,
	)
}

// findLastBranchPoint scans beats from the end backward. Among beats whose
// longest active backward span meets minLong the rightmost wins, tie-broken
// by span then by normalized reach; when none qualifies the beat with the
// best normalized reach among branching beats is used instead.
func (g *Graph) findLastBranchPoint(minLong int) (int, float64) {
	total := len(g.track.Beats)

	bestIdx, bestReach := -1, 0.0
	longIdx, longSpan, longReach := -1, 0, 0.0
	for i := total - 1; i >= 0; i-- {
		if len(g.active[i]) == 0 {
			continue
		}
		reach := float64(g.reach[i]) * 100 / float64(total)
		if bestIdx < 0 || reach > bestReach {
			bestIdx = i
			bestReach = reach
		}
		span := 0
		for _, id := range g.active[i] {
			if delta := i - g.edges[id].Dest; delta > span {
				span = delta
			}
		}
		if span < minLong {
			continue
		}
		if i > longIdx ||
			(i == longIdx && span > longSpan) ||
			(i == longIdx && span == longSpan && reach > longReach) {
			longIdx = i
			longSpan = span
			longReach = reach
		}
	}
	if longIdx >= 0 {
		return longIdx, longReach
	}
	if bestIdx < 0 {
		return 0, 0
	}
	return bestIdx, bestReach
}

// pruneTail drops every active edge pointing at or past the last branch
// point from beats before it; branches must not jump onto the tail region.
func (g *Graph) pruneTail(last int) {
	for i := 0; i < last; i++ {
		kept := g.active[i][:0]
		for _, id := range g.active[i] {
			if g.edges[id].Dest < last {
				kept = append(kept, id)
			}
		}
		g.active[i] = kept
	}
}

// removeSequentialDuplicates drops active edges whose span exactly matches a
// span on the immediately preceding beat, removing runs that would feel
// mechanically repetitive. The last branch point itself is exempt.
func (g *Graph) removeSequentialDuplicates(last int) {
	total := len(g.track.Beats)
	for i := total - 1; i >= 1; i-- {
		if i == last {
			continue
		}
		prevSpans := make(map[int]struct{}, len(g.active[i-1]))
		for _, id := range g.active[i-1] {
			prevSpans[(i-1)-g.edges[id].Dest] = struct{}{}
		}
		kept := g.active[i][:0]
		for _, id := range g.active[i] {
			if _, dup := prevSpans[i-g.edges[id].Dest]; !dup {
				kept = append(kept, id)
			}
		}
		g.active[i] = kept
	}
}

// rotateActive pops the first active edge of a beat, re-appends it to the
// back and returns it, round-robining among branch targets across repeated
// visits.
func (g *Graph) rotateActive(beat int) *Edge {
	ids := g.active[beat]
	if len(ids) == 0 {
		return nil
	}
	id := ids[0]
	copy(ids, ids[1:])
	ids[len(ids)-1] = id
	return g.edges[id]
}

func (g *Graph) edgeSnapshot() []Edge {
	out := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		out[i] = *e
	}
	return out
}

func (g *Graph) activeEdgeCount() int {
	n := 0
	for _, ids := range g.active {
		n += len(ids)
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
