package services

import (
	"testing"

	"github.com/truevow/truevow/internal/catalog"
)

func scoreWith(overall float64, sections map[string]float64) *ScoreResult {
	out := &ScoreResult{OverallPercentage: overall, Sections: map[string]SectionScore{}}
	for name, pct := range sections {
		out.Sections[name] = SectionScore{Earned: int(pct), Possible: 100, Percentage: pct}
	}
	return out
}

func defaultSet(t *testing.T) *ProfileSet {
	t.Helper()
	set, err := DefaultProfileSet()
	if err != nil {
		t.Fatalf("DefaultProfileSet: %v", err)
	}
	return set
}

func TestMatchProfileFirstMatchWins(t *testing.T) {
	set := defaultSet(t)
	// Satisfies covenant-keeper AND peacemaker; evaluation order must pick
	// covenant-keeper.
	result := scoreWith(90, map[string]float64{
		catalog.SectionFaith:         90,
		catalog.SectionCharacter:     85,
		catalog.SectionCommunication: 90,
	})
	match, err := MatchProfile(set, result, "")
	if err != nil {
		t.Fatalf("MatchProfile: %v", err)
	}
	if match.Primary == nil || match.Primary.ID != "covenant-keeper" {
		t.Fatalf("primary = %+v, want covenant-keeper", match.Primary)
	}
	if match.Gender != nil {
		t.Fatalf("gender profile = %+v, want none without declared gender", match.Gender)
	}
}

func TestMatchProfileFallback(t *testing.T) {
	set := defaultSet(t)
	result := scoreWith(40, map[string]float64{
		catalog.SectionFaith: 40,
		catalog.SectionMoney: 35,
	})
	match, err := MatchProfile(set, result, "unspecified")
	if err != nil {
		t.Fatalf("MatchProfile: %v", err)
	}
	if match.Primary == nil || match.Primary.ID != "balanced" {
		t.Fatalf("primary = %+v, want balanced fallback", match.Primary)
	}
}

func TestMatchProfileGenderSubset(t *testing.T) {
	set := defaultSet(t)
	result := scoreWith(82, map[string]float64{
		catalog.SectionFaith: 85,
		catalog.SectionRoles: 80,
		catalog.SectionMoney: 85,
	})
	match, err := MatchProfile(set, result, "  Male ")
	if err != nil {
		t.Fatalf("MatchProfile: %v", err)
	}
	if match.Gender == nil || match.Gender.ID != "servant-leader" {
		t.Fatalf("gender profile = %+v, want servant-leader (order before provider)", match.Gender)
	}

	match, err = MatchProfile(set, result, "female")
	if err != nil {
		t.Fatalf("MatchProfile female: %v", err)
	}
	if match.Gender == nil || match.Gender.ID != "wise-builder" {
		t.Fatalf("gender profile = %+v, want wise-builder", match.Gender)
	}
}

func TestMatchProfileDeterministic(t *testing.T) {
	set := defaultSet(t)
	result := scoreWith(88, map[string]float64{
		catalog.SectionCommunication: 88,
		catalog.SectionCharacter:     80,
		catalog.SectionFamily:        75,
	})
	first, err := MatchProfile(set, result, "female")
	if err != nil {
		t.Fatalf("MatchProfile: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := MatchProfile(set, result, "female")
		if err != nil {
			t.Fatalf("MatchProfile repeat: %v", err)
		}
		if again.Primary.ID != first.Primary.ID || again.Gender.ID != first.Gender.ID {
			t.Fatalf("match changed across runs: (%s,%s) vs (%s,%s)",
				first.Primary.ID, first.Gender.ID, again.Primary.ID, again.Gender.ID)
		}
	}
}

func TestMatchProfileMissingSectionFailsCriterion(t *testing.T) {
	set := defaultSet(t)
	// High overall but no section data at all: only the fallback can match.
	result := scoreWith(95, nil)
	match, err := MatchProfile(set, result, "")
	if err != nil {
		t.Fatalf("MatchProfile: %v", err)
	}
	if match.Primary.ID != "balanced" {
		t.Fatalf("primary = %q, want balanced", match.Primary.ID)
	}
}

func TestNewProfileSetRequiresFallback(t *testing.T) {
	_, err := NewProfileSet([]*Profile{
		{ID: "only", Criteria: []ProfileCriterion{{Section: "S", Min: 50}}},
	}, nil)
	if err == nil {
		t.Fatal("expected error for missing fallback")
	}

	_, err = NewProfileSet(
		[]*Profile{{ID: "fallback"}},
		map[string][]*Profile{"male": {
			{ID: "m1", Gender: "male", Criteria: []ProfileCriterion{{Section: "S", Min: 50}}},
		}},
	)
	if err == nil {
		t.Fatal("expected error for gendered list without fallback")
	}
}

func TestNewProfileSetRejectsDuplicatesAndMistagging(t *testing.T) {
	_, err := NewProfileSet([]*Profile{{ID: "a", Criteria: []ProfileCriterion{{Section: "S", Min: 1}}}, {ID: "a"}}, nil)
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
	_, err = NewProfileSet(
		[]*Profile{{ID: "fallback"}},
		map[string][]*Profile{"male": {{ID: "f1", Gender: "female"}}},
	)
	if err == nil {
		t.Fatal("expected gender tag mismatch error")
	}
}
