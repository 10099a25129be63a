package recommend

// FlowConfig names one recommendation flow's tier caps and binning rules.
// The flows drifted apart in production (Dream lower bound, cap sizes, zero
// boundary) and clients depend on each variant's exact output, so the
// differences are kept as explicit configuration instead of being unified.
type FlowConfig struct {
	Name     string
	DreamLow int // lowest probability still worth listing
	DreamCap int
	ReachCap int
	MatchCap int
	Boundary BoundaryVariant
}

// GroupCap bounds the total number of candidates stored in one group.
const GroupCap = 300

var (
	// RoundPreferenceFlow drives the common round-preference flow.
	RoundPreferenceFlow = FlowConfig{
		Name:     "round_preference",
		DreamLow: 10,
		DreamCap: 15,
		ReachCap: 25,
		MatchCap: 50,
		Boundary: ZeroInclusive,
	}

	// ExploreFlow drives the flat explore recommendation flow.
	ExploreFlow = FlowConfig{
		Name:     "explore",
		DreamLow: 20,
		DreamCap: 5,
		ReachCap: 15,
		MatchCap: 50,
		Boundary: ZeroExclusive,
	}

	// ExploreRoundFlow drives explore recommendations for round two onward.
	ExploreRoundFlow = FlowConfig{
		Name:     "explore_round",
		DreamLow: 20,
		DreamCap: 10,
		ReachCap: 25,
		MatchCap: 50,
		Boundary: ZeroExclusive,
	}

	// DiplomaFlow drives the diploma (DSY) recommendation flow.
	DiplomaFlow = FlowConfig{
		Name:     "diploma",
		DreamLow: 20,
		DreamCap: 15,
		ReachCap: 25,
		MatchCap: 50,
		Boundary: ZeroExclusive,
	}
)
