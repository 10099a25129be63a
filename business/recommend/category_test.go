package recommend

import (
	"testing"

	"gorm.io/datatypes"

	"futureBridge/domain"
)

func TestFamilyForTieredCode(t *testing.T) {
	fam := FamilyFor("GOPENH")

	if fam.Other != "GOPENO" || fam.State != "GOPENS" {
		t.Fatalf("unexpected family %+v", fam)
	}
	if fam.FemaleHome != "LOPENH" || fam.FemaleState != "LOPENS" {
		t.Fatalf("unexpected female siblings %+v", fam)
	}

	// Any code of the family resolves to the same family.
	if got := FamilyFor("LOPENS"); got.Home != "GOPENH" {
		t.Fatalf("LOPENS resolved to %+v", got)
	}
}

func TestFamilyForStateOnlyCode(t *testing.T) {
	fam := FamilyFor("TFWS")
	if fam.State != "TFWS" || fam.Home != "" || fam.FemaleState != "" {
		t.Fatalf("unexpected family %+v", fam)
	}
}

func TestFamilyForUnknownCode(t *testing.T) {
	// Unknown codes still participate at state level under their literal name.
	fam := FamilyFor("XYZQ")
	if fam.State != "XYZQ" {
		t.Fatalf("unexpected family %+v", fam)
	}
}

func TestForTierSelectsQuotaCode(t *testing.T) {
	fam := FamilyFor("GOPENH")

	cases := []struct {
		origin          domain.TierOrigin
		primary, female string
	}{
		{domain.OriginHomeUniversity, "GOPENH", "LOPENH"},
		{domain.OriginOtherUniversity, "GOPENO", "LOPENO"},
		{domain.OriginStateLevel, "GOPENS", "LOPENS"},
	}
	for _, tc := range cases {
		if got := fam.ForTier(tc.origin); got != tc.primary {
			t.Fatalf("ForTier(%v) = %q, want %q", tc.origin, got, tc.primary)
		}
		if got := fam.FemaleForTier(tc.origin); got != tc.female {
			t.Fatalf("FemaleForTier(%v) = %q, want %q", tc.origin, got, tc.female)
		}
	}
}

func TestForTierStateOnlyFamily(t *testing.T) {
	fam := FamilyFor("TFWS")

	if got := fam.ForTier(domain.OriginStateLevel); got != "TFWS" {
		t.Fatalf("ForTier(state) = %q, want TFWS", got)
	}
	if got := fam.ForTier(domain.OriginHomeUniversity); got != "" {
		t.Fatalf("ForTier(home) = %q, want empty", got)
	}
	if got := fam.FemaleForTier(domain.OriginStateLevel); got != "" {
		t.Fatalf("FemaleForTier(state) = %q, want empty", got)
	}
}

func TestIsHomeQuota(t *testing.T) {
	if !IsHomeQuota("GOPENH") {
		t.Fatal("GOPENH is a home quota code")
	}
	if IsHomeQuota("GOPENS") || IsHomeQuota("TFWS") {
		t.Fatal("state codes are not home quota codes")
	}
}

func rowWithCategories(m map[string]any) domain.CutoffRecord {
	return domain.CutoffRecord{Categories: datatypes.JSONMap(m)}
}

func TestConsideredCutoffPrefersLowerFemaleSibling(t *testing.T) {
	row := rowWithCategories(map[string]any{"GOPENH": 92.0, "LOPENH": 89.5})

	cutoff, considered, ok := consideredCutoff(row, []string{"GOPENH", "LOPENH"}, true)
	if !ok {
		t.Fatal("expected a usable cutoff")
	}
	if considered != "LOPENH" || cutoff != 89.5 {
		t.Fatalf("got %q %.1f, want LOPENH 89.5", considered, cutoff)
	}
}

func TestConsideredCutoffIgnoresSiblingForMale(t *testing.T) {
	row := rowWithCategories(map[string]any{"GOPENH": 92.0, "LOPENH": 89.5})

	cutoff, considered, ok := consideredCutoff(row, []string{"GOPENH", "LOPENH"}, false)
	if !ok || considered != "GOPENH" || cutoff != 92.0 {
		t.Fatalf("got %q %.1f ok=%v, want GOPENH 92.0", considered, cutoff, ok)
	}
}

func TestConsideredCutoffSiblingFillsMissingBase(t *testing.T) {
	row := rowWithCategories(map[string]any{"LOPENH": 88.0})

	cutoff, considered, ok := consideredCutoff(row, []string{"GOPENH", "LOPENH"}, true)
	if !ok || considered != "LOPENH" || cutoff != 88.0 {
		t.Fatalf("got %q %.1f ok=%v, want LOPENH 88.0", considered, cutoff, ok)
	}
}

func TestConsideredCutoffSkipsWhenNothingApplies(t *testing.T) {
	row := rowWithCategories(map[string]any{"GSCS": 75.0})

	if _, _, ok := consideredCutoff(row, []string{"GOPENH", "LOPENH"}, true); ok {
		t.Fatal("row without either seat type must be skipped")
	}

	// Null values read as not offered.
	row = rowWithCategories(map[string]any{"GOPENH": nil})
	if _, _, ok := consideredCutoff(row, []string{"GOPENH", "LOPENH"}, false); ok {
		t.Fatal("null cutoff must be skipped")
	}
}

func TestConsideredCutoffHigherSiblingLoses(t *testing.T) {
	row := rowWithCategories(map[string]any{"GOPENS": 85.0, "LOPENS": 90.0})

	cutoff, considered, ok := consideredCutoff(row, []string{"GOPENS", "LOPENS"}, true)
	if !ok || considered != "GOPENS" || cutoff != 85.0 {
		t.Fatalf("got %q %.1f ok=%v, want GOPENS 85.0", considered, cutoff, ok)
	}
}
