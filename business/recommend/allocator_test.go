package recommend

import (
	"testing"

	"futureBridge/domain"
)

func candidate(prob int, cutoff float64) domain.CandidateScore {
	return domain.CandidateScore{AdmissionProbability: prob, Cutoff: cutoff}
}

func repeat(n int, prob int, cutoff float64) []domain.CandidateScore {
	out := make([]domain.CandidateScore, n)
	for i := range out {
		out[i] = candidate(prob, cutoff)
	}
	return out
}

func TestAllocatePartitionsByProbability(t *testing.T) {
	results := []domain.CandidateScore{
		candidate(95, 97),
		candidate(85, 92),
		candidate(60, 88),
		candidate(30, 80),
		candidate(10, 70),
	}

	dream, reach, match, safety := Allocate(results, RoundPreferenceFlow)

	if len(safety) != 1 || safety[0].AdmissionProbability != 95 {
		t.Fatalf("safety = %+v", safety)
	}
	if len(match) != 1 || match[0].AdmissionProbability != 85 {
		t.Fatalf("match = %+v", match)
	}
	if len(reach) != 1 || reach[0].AdmissionProbability != 60 {
		t.Fatalf("reach = %+v", reach)
	}
	// Dream lower bound is 10 in the round-preference flow.
	if len(dream) != 2 {
		t.Fatalf("dream = %+v", dream)
	}
}

func TestAllocateDreamLowerBoundPerFlow(t *testing.T) {
	results := []domain.CandidateScore{candidate(10, 70)}

	dream, _, _, _ := Allocate(results, RoundPreferenceFlow)
	if len(dream) != 1 {
		t.Fatalf("round-preference flow should keep probability 10, got %d", len(dream))
	}

	dream, _, _, _ = Allocate(results, ExploreFlow)
	if len(dream) != 0 {
		t.Fatalf("explore flow should drop probability 10, got %d", len(dream))
	}
}

func TestAllocateOverflowCascade(t *testing.T) {
	// 60 match candidates overflow into reach, pushing reach's own
	// candidates plus the spill past its cap into dream.
	var results []domain.CandidateScore
	results = append(results, repeat(60, 80, 90)...) // match range
	results = append(results, repeat(20, 60, 85)...) // reach range
	results = append(results, repeat(3, 30, 75)...)  // dream range

	dream, reach, match, _ := Allocate(results, RoundPreferenceFlow)

	if len(match) != 50 {
		t.Fatalf("match = %d, want 50", len(match))
	}
	// reach pool: 20 own + 10 match overflow = 30, capped at 25.
	if len(reach) != 25 {
		t.Fatalf("reach = %d, want 25", len(reach))
	}
	// dream pool: 3 own + 5 reach overflow = 8, under the cap of 15.
	if len(dream) != 8 {
		t.Fatalf("dream = %d, want 8", len(dream))
	}
}

func TestAllocateDreamOverflowNeverReachesSafety(t *testing.T) {
	var results []domain.CandidateScore
	results = append(results, repeat(30, 40, 80)...) // 30 dream-range, cap 15
	results = append(results, repeat(2, 95, 96)...)

	dream, _, _, safety := Allocate(results, RoundPreferenceFlow)

	if len(dream) != 15 {
		t.Fatalf("dream = %d, want 15", len(dream))
	}
	// The 15 dream overflow candidates are dropped, not moved to safety.
	if len(safety) != 2 {
		t.Fatalf("safety = %d, want 2", len(safety))
	}
}

func TestAllocateGroupCap(t *testing.T) {
	var results []domain.CandidateScore
	results = append(results, repeat(60, 80, 90)...)  // match: 50 kept
	results = append(results, repeat(30, 60, 85)...)  // reach: 25 kept
	results = append(results, repeat(20, 30, 75)...)  // dream: 15 kept
	results = append(results, repeat(400, 95, 96)...) // safety pool

	dream, reach, match, safety := Allocate(results, RoundPreferenceFlow)

	used := len(dream) + len(reach) + len(match)
	if want := GroupCap - used; len(safety) != want {
		t.Fatalf("safety = %d, want %d", len(safety), want)
	}
	if total := used + len(safety); total != GroupCap {
		t.Fatalf("total = %d, want %d", total, GroupCap)
	}
}

func TestAllocateSortsTiersByCutoffDescending(t *testing.T) {
	results := []domain.CandidateScore{
		candidate(80, 88.5),
		candidate(80, 91.2),
		candidate(80, 90.0),
	}

	_, _, match, _ := Allocate(results, ExploreFlow)

	if len(match) != 3 {
		t.Fatalf("match = %d, want 3", len(match))
	}
	for i := 1; i < len(match); i++ {
		if match[i].Cutoff > match[i-1].Cutoff {
			t.Fatalf("match not sorted by cutoff descending: %+v", match)
		}
	}
}

func TestNewGroupTiersNeverNil(t *testing.T) {
	group := NewGroup("student@example.com", 1, nil, RoundPreferenceFlow, false, false)
	if group.Dream == nil || group.Reach == nil || group.Match == nil || group.Safety == nil {
		t.Fatal("tier slices must be non-nil so they serialize as []")
	}
}
