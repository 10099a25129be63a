package recommend

import (
	"sort"

	"futureBridge/domain"
)

// Allocate buckets scored candidates into the four tiers, orders each tier
// by cutoff descending, and applies the overflow cascade: Match spills into
// Reach and Reach spills into Dream. Dream overflow is dropped rather than
// spilled into Safety; stored groups have always looked this way and the
// clients render them as-is. Safety takes whatever head room is left under
// GroupCap.
func Allocate(results []domain.CandidateScore, cfg FlowConfig) (dream, reach, match, safety []domain.CandidateScore) {
	var dreamAll, reachAll, matchAll, safetyAll []domain.CandidateScore
	for _, r := range results {
		switch p := r.AdmissionProbability; {
		case p >= 90:
			safetyAll = append(safetyAll, r)
		case p >= 75:
			matchAll = append(matchAll, r)
		case p >= 50:
			reachAll = append(reachAll, r)
		case p >= cfg.DreamLow:
			dreamAll = append(dreamAll, r)
		}
	}

	sortByCutoffDesc(dreamAll)
	sortByCutoffDesc(reachAll)
	sortByCutoffDesc(matchAll)
	sortByCutoffDesc(safetyAll)

	// Overflow keeps its own order at the tail of the next tier; the
	// receiving tier is not re-sorted.
	match, overflow := splitAt(matchAll, cfg.MatchCap)
	reachAll = append(reachAll, overflow...)
	reach, overflow = splitAt(reachAll, cfg.ReachCap)
	dreamAll = append(dreamAll, overflow...)
	dream, _ = splitAt(dreamAll, cfg.DreamCap)

	remaining := GroupCap - len(match) - len(reach) - len(dream)
	if remaining < 0 {
		remaining = 0
	}
	safety, _ = splitAt(safetyAll, remaining)

	return dream, reach, match, safety
}

// NewGroup runs the allocator and assembles the persisted group shape. Tier
// slices are always non-nil so an empty tier serializes as [].
func NewGroup(username string, round int, results []domain.CandidateScore, cfg FlowConfig, isPayment, acceptPayment bool) domain.RecommendationGroup {
	dream, reach, match, safety := Allocate(results, cfg)
	return domain.RecommendationGroup{
		Username:      username,
		Round:         round,
		Dream:         notNil(dream),
		Reach:         notNil(reach),
		Match:         notNil(match),
		Safety:        notNil(safety),
		IsPayment:     isPayment,
		AcceptPayment: acceptPayment,
	}
}

func sortByCutoffDesc(s []domain.CandidateScore) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Cutoff > s[j].Cutoff })
}

func splitAt(s []domain.CandidateScore, n int) (head, tail []domain.CandidateScore) {
	if len(s) <= n {
		return s, nil
	}
	return s[:n], s[n:]
}

func notNil(s []domain.CandidateScore) []domain.CandidateScore {
	if s == nil {
		return []domain.CandidateScore{}
	}
	return s
}
