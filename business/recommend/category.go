package recommend

import (
	"strings"

	"futureBridge/domain"
)

// Category codes follow a fixed grammar: an optional "L" prefix marks the
// female-reserved sibling, and the trailing letter marks the quota tier
// (H = home university, O = other university, S = state level). The family
// table below is built once from the known base set so tier and sibling
// lookups never slice strings at call sites.

// CategoryFamily holds every code derived from one base category.
type CategoryFamily struct {
	Base        string
	Home        string
	Other       string
	State       string
	FemaleHome  string
	FemaleOther string
	FemaleState string
}

// ForTier returns the family code for a university tier.
func (f CategoryFamily) ForTier(origin domain.TierOrigin) string {
	switch origin {
	case domain.OriginHomeUniversity:
		return f.Home
	case domain.OriginOtherUniversity:
		return f.Other
	default:
		return f.State
	}
}

// FemaleForTier returns the "L"-prefixed sibling for a university tier, or
// "" when the family has no female sibling.
func (f CategoryFamily) FemaleForTier(origin domain.TierOrigin) string {
	switch origin {
	case domain.OriginHomeUniversity:
		return f.FemaleHome
	case domain.OriginOtherUniversity:
		return f.FemaleOther
	default:
		return f.FemaleState
	}
}

// Base stems that carry the full H/O/S + L-sibling grammar.
var tieredBases = []string{
	"GOPEN", "GSC", "GST", "GVJ",
	"GNT1", "GNT2", "GNT3", "GOBC", "GSEBC",
}

// Codes that only exist at state level and have no gender sibling.
var stateOnlyCategories = []string{
	"TFWS", "EWS", "DEFOPENS", "DEFROBCS", "ORPHAN", "MI",
}

// categoryIndex maps every known code to its family.
var categoryIndex = buildCategoryIndex()

func buildCategoryIndex() map[string]CategoryFamily {
	idx := make(map[string]CategoryFamily)

	for _, base := range tieredBases {
		sibling := "L" + strings.TrimPrefix(base, "G")
		fam := CategoryFamily{
			Base:        base,
			Home:        base + "H",
			Other:       base + "O",
			State:       base + "S",
			FemaleHome:  sibling + "H",
			FemaleOther: sibling + "O",
			FemaleState: sibling + "S",
		}
		for _, code := range []string{fam.Home, fam.Other, fam.State, fam.FemaleHome, fam.FemaleOther, fam.FemaleState} {
			idx[code] = fam
		}
	}

	for _, code := range stateOnlyCategories {
		idx[code] = CategoryFamily{
			Base:        code,
			State:       code,
			FemaleState: "",
		}
	}

	return idx
}

// FamilyFor resolves a requested category code to its family. Unknown codes
// get a degenerate state-only family so the literal code still participates
// in state-level lookups, mirroring how unrecognized quota codes behave in
// the source data.
func FamilyFor(code string) CategoryFamily {
	if fam, ok := categoryIndex[code]; ok {
		return fam
	}
	return CategoryFamily{Base: code, State: code}
}

// IsHomeQuota reports whether the requested code is a home-university quota
// code, which is what activates the home/other tier queries.
func IsHomeQuota(code string) bool {
	fam, ok := categoryIndex[code]
	return ok && code == fam.Home || (!ok && strings.HasSuffix(code, "H"))
}
