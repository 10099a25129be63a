package domain

// TierOrigin tags which university tier produced a candidate row, so the
// output label does not have to be reconstructed from the code path that
// fetched it.
type TierOrigin int

const (
	OriginStateLevel TierOrigin = iota
	OriginHomeUniversity
	OriginOtherUniversity
)

func (o TierOrigin) Label() string {
	switch o {
	case OriginHomeUniversity:
		return "Home University"
	case OriginOtherUniversity:
		return "Other than Home University"
	default:
		return "State Level"
	}
}

// CandidateScore is one scored (college, course) candidate. College holds
// either the compact college dict (round-preference flow) or the full
// institute meta document (explore flow); both serialize as-is.
type CandidateScore struct {
	College              map[string]any `json:"college"`
	Course               string         `json:"course,omitempty"`
	AdmissionProbability int            `json:"admission_probability"`
	ProbabilityMessage   string         `json:"probability_message"`
	CETPercentile        float64        `json:"cet_percentile"`
	Category             string         `json:"category"`
	Cutoff               float64        `json:"cutoff"`
}

// RecommendationGroup is the assembled output of one recommendation run:
// four probability tiers plus the payment flags resolved for the user.
// At most one group exists per (username, round, exam type); a later run
// replaces the earlier one entirely.
type RecommendationGroup struct {
	Username      string           `json:"username"`
	Round         int              `json:"Round"`
	Dream         []CandidateScore `json:"Dream"`
	Reach         []CandidateScore `json:"Reach"`
	Match         []CandidateScore `json:"Match"`
	Safety        []CandidateScore `json:"Safety"`
	IsPayment     bool             `json:"is_payment"`
	AcceptPayment bool             `json:"accept_payment"`
}

// EmptyRecommendationGroup is the terminal "no recommendation yet" value
// persisted when the request is not eligible for scoring.
func EmptyRecommendationGroup(username string, round int) RecommendationGroup {
	return RecommendationGroup{
		Username:      username,
		Round:         round,
		Dream:         []CandidateScore{},
		Reach:         []CandidateScore{},
		Match:         []CandidateScore{},
		Safety:        []CandidateScore{},
		IsPayment:     false,
		AcceptPayment: false,
	}
}

func (g RecommendationGroup) Total() int {
	return len(g.Dream) + len(g.Reach) + len(g.Match) + len(g.Safety)
}
