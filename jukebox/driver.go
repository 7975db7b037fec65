package jukebox

import (
	"sync"

	"github.com/mager/jukebox/analysis"
	"go.uber.org/zap"
)

// PlaybackState is a read-only snapshot emitted after each tick.
type PlaybackState struct {
	CurrentIndex int  `json:"current_index"`
	BeatsPlayed  int  `json:"beats_played"`
	LastJumped   bool `json:"last_jumped"`
	// LastJumpSource is the source beat of the most recent jump, -1 before
	// any jump has been taken.
	LastJumpSource    int     `json:"last_jump_source"`
	BranchProbability float64 `json:"branch_probability"`
}

// BeatView is the read-only beat shape handed to rendering collaborators.
type BeatView struct {
	Index       int     `json:"index"`
	Start       float64 `json:"start"`
	Duration    float64 `json:"duration"`
	ActiveEdges []int   `json:"active_edges"`
}

// Snapshot is a read-only view of the graph for visualization.
type Snapshot struct {
	Beats       []BeatView `json:"beats"`
	ActiveEdges []Edge     `json:"active_edges"`
}

// Driver is the playback scheduler over a branch graph. It advances exactly
// once per Tick, driven by the host's beat clock, and serializes ticks
// against rebuilds and live edits with a single mutex so a tick never
// observes a graph mid-rebuild.
type Driver struct {
	mu    sync.Mutex
	log   *zap.SugaredLogger
	graph *Graph
	rand  Rand

	listeners []func(PlaybackState)

	current        int
	beatsPlayed    int
	prob           float64
	lastJumped     bool
	lastJumpSource int
}

// NewDriver builds a scheduler over the graph. A nil random source gets a
// free-running one.
func NewDriver(graph *Graph, random Rand, log *zap.SugaredLogger) *Driver {
	if random == nil {
		random = NewFreeRand()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Driver{
		log:            log,
		graph:          graph,
		rand:           random,
		prob:           graph.Config().MinRandomBranchChance,
		lastJumpSource: -1,
	}
}

// OnUpdate registers a listener delivered a PlaybackState after every tick.
// Listeners run synchronously on the ticking goroutine.
func (d *Driver) OnUpdate(fn func(PlaybackState)) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

// Tick advances the scheduler by one beat and returns the new state. Ticks
// never fail; on an empty graph they neither branch nor advance.
func (d *Driver) Tick() PlaybackState {
	d.mu.Lock()
	state := d.tickLocked()
	listeners := d.listeners
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
	return state
}

func (d *Driver) tickLocked() PlaybackState {
	cfg := d.graph.Config()
	total := d.graph.state.TotalBeats
	if total == 0 || d.current >= total {
		return d.snapshotLocked()
	}

	beat := d.current
	branched := false
	if len(d.graph.active[beat]) > 0 {
		if beat == d.graph.state.LastBranchPoint {
			branched = true
		} else {
			d.prob += cfg.RandomBranchChanceDelta
			if d.prob > cfg.MaxRandomBranchChance {
				d.prob = cfg.MaxRandomBranchChance
			}
			branched = d.rand.Float64() < d.prob
		}
		if branched {
			d.prob = cfg.MinRandomBranchChance
		}
	}

	if branched {
		edge := d.graph.rotateActive(beat)
		d.current = edge.Dest
		d.lastJumped = true
		d.lastJumpSource = beat
	} else {
		d.lastJumped = false
		if beat+1 < total {
			d.current = beat + 1
		}
	}
	d.beatsPlayed++
	return d.snapshotLocked()
}

func (d *Driver) snapshotLocked() PlaybackState {
	return PlaybackState{
		CurrentIndex:      d.current,
		BeatsPlayed:       d.beatsPlayed,
		LastJumped:        d.lastJumped,
		LastJumpSource:    d.lastJumpSource,
		BranchProbability: d.prob,
	}
}

// State returns the current playback snapshot without advancing.
func (d *Driver) State() PlaybackState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Reset rewinds playback to the first beat and resets the accumulator.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = 0
	d.beatsPlayed = 0
	d.prob = d.graph.Config().MinRandomBranchChance
	d.lastJumped = false
	d.lastJumpSource = -1
}

// CurrentBeat returns the beat playback is on, if any.
func (d *Driver) CurrentBeat() (analysis.Quantum, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	beats := d.graph.track.Beats
	if d.current < 0 || d.current >= len(beats) {
		return analysis.Quantum{}, false
	}
	return beats[d.current], true
}

// UpdateConfig replaces the policy, rebuilding immediately when a
// filtering-relevant field changed. Probability bounds apply from the next
// tick; the accumulator is clamped into the new range.
func (d *Driver) UpdateConfig(cfg Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	old := d.graph.Config()
	d.graph.SetConfig(cfg)
	if old.filterRelevant(cfg) {
		d.graph.Rebuild()
	}
	if d.prob < cfg.MinRandomBranchChance {
		d.prob = cfg.MinRandomBranchChance
	}
	if d.prob > cfg.MaxRandomBranchChance {
		d.prob = cfg.MaxRandomBranchChance
	}
}

// RebuildGraph synchronously re-derives the active edges, threshold and last
// branch point, atomically with respect to ticks.
func (d *Driver) RebuildGraph() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.graph.Rebuild()
}

// DeleteEdge soft-deletes an edge; the graph topology changes on the next
// rebuild. Unknown ids are ignored.
func (d *Driver) DeleteEdge(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.graph.DeleteEdge(id)
}

// ClearDeletedEdges undoes all soft deletions.
func (d *Driver) ClearDeletedEdges() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.graph.ClearDeletedEdges()
}

// GraphState returns the snapshot of the latest rebuild.
func (d *Driver) GraphState() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.graph.State()
}

// VisualizationSnapshot returns the beats and currently active edges for
// rendering collaborators.
func (d *Driver) VisualizationSnapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	beats := d.graph.track.Beats
	snap := Snapshot{Beats: make([]BeatView, len(beats))}
	for i := range beats {
		ids := make([]int, len(d.graph.active[i]))
		copy(ids, d.graph.active[i])
		snap.Beats[i] = BeatView{
			Index:       i,
			Start:       beats[i].Start,
			Duration:    beats[i].Duration,
			ActiveEdges: ids,
		}
		for _, id := range ids {
			snap.ActiveEdges = append(snap.ActiveEdges, *d.graph.edges[id])
		}
	}
	return snap
}
