package jukebox

// Config is the tunable branching policy for graph construction and playback.
type Config struct {
	// MaxBranches caps the number of candidate edges kept per beat.
	MaxBranches int `json:"max_branches"`
	// MaxBranchThreshold is the largest similarity distance ever considered.
	MaxBranchThreshold float64 `json:"max_branch_threshold"`
	// BranchThreshold is the active similarity threshold. Zero means
	// auto-calibrate against the target branch density.
	BranchThreshold float64 `json:"branch_threshold"`

	// AddLastEdge reinforces the graph with one long backward edge when the
	// threshold filter would otherwise leave no good loop back.
	AddLastEdge bool `json:"add_last_edge"`
	// BackwardOnly keeps only edges pointing earlier in the track.
	BackwardOnly bool `json:"backward_only"`
	// LongBranchesOnly keeps only edges spanning at least MinLongBranch beats.
	LongBranchesOnly bool `json:"long_branches_only"`
	// RemoveSequentialDuplicates drops runs of edges with identical backward
	// spans on consecutive beats.
	RemoveSequentialDuplicates bool `json:"remove_sequential_duplicates"`

	// MinRandomBranchChance is the floor of the branch-probability
	// accumulator; the accumulator resets here after every taken branch.
	MinRandomBranchChance float64 `json:"min_random_branch_chance"`
	// MaxRandomBranchChance clamps the accumulator.
	MaxRandomBranchChance float64 `json:"max_random_branch_chance"`
	// RandomBranchChanceDelta is added to the accumulator on every
	// non-branching tick.
	RandomBranchChanceDelta float64 `json:"random_branch_chance_delta"`

	// MinLongBranch is the minimum beat span of a "long" branch. Zero means
	// one fifth of the total beat count, resolved at build time.
	MinLongBranch int `json:"min_long_branch"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MaxBranches:                4,
		MaxBranchThreshold:         80,
		BranchThreshold:            0,
		AddLastEdge:                true,
		BackwardOnly:               false,
		LongBranchesOnly:           false,
		RemoveSequentialDuplicates: false,
		MinRandomBranchChance:      0.18,
		MaxRandomBranchChance:      0.5,
		RandomBranchChanceDelta:    0.018,
		MinLongBranch:              0,
	}
}

// filterRelevant reports whether switching from c to next changes any field
// the graph filter depends on, requiring a rebuild before the active edges
// can be trusted again.
func (c Config) filterRelevant(next Config) bool {
	return c.BranchThreshold != next.BranchThreshold ||
		c.MaxBranchThreshold != next.MaxBranchThreshold ||
		c.AddLastEdge != next.AddLastEdge ||
		c.BackwardOnly != next.BackwardOnly ||
		c.LongBranchesOnly != next.LongBranchesOnly ||
		c.RemoveSequentialDuplicates != next.RemoveSequentialDuplicates ||
		c.MinLongBranch != next.MinLongBranch
}
