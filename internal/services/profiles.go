package services

import (
	"fmt"

	"github.com/truevow/truevow/internal/catalog"
)

// ProfileSet is the fixed enumeration of psychographic profiles the matcher
// selects from. Order within each list is the evaluation order and is part of
// the contract: the first profile whose criteria are all met wins.
type ProfileSet struct {
	unisex   []*Profile
	byGender map[string][]*Profile
}

// NewProfileSet validates that every list ends with a criteria-less fallback,
// so matching can never assign zero profiles. A missing fallback is a
// configuration error surfaced at startup, not per request.
func NewProfileSet(unisex []*Profile, byGender map[string][]*Profile) (*ProfileSet, error) {
	if err := validateProfileList("unisex", unisex); err != nil {
		return nil, err
	}
	for gender, list := range byGender {
		if err := validateProfileList(gender, list); err != nil {
			return nil, err
		}
		for _, p := range list {
			if NormalizeGender(p.Gender) != gender {
				return nil, fmt.Errorf("profile %q listed under gender %q but tagged %q", p.ID, gender, p.Gender)
			}
		}
	}
	return &ProfileSet{unisex: unisex, byGender: byGender}, nil
}

func validateProfileList(label string, list []*Profile) error {
	if len(list) == 0 {
		return fmt.Errorf("profile set %q is empty", label)
	}
	seen := map[string]bool{}
	for _, p := range list {
		if p.ID == "" {
			return fmt.Errorf("profile set %q contains a profile without an id", label)
		}
		if seen[p.ID] {
			return fmt.Errorf("profile set %q: duplicate profile id %q", label, p.ID)
		}
		seen[p.ID] = true
	}
	last := list[len(list)-1]
	if len(last.Criteria) != 0 || last.MinOverall != 0 {
		return fmt.Errorf("profile set %q: final profile %q must be a criteria-less fallback", label, last.ID)
	}
	return nil
}

// Unisex returns the unisex profiles in evaluation order.
func (s *ProfileSet) Unisex() []*Profile { return s.unisex }

// ForGender returns the evaluation-ordered profiles for a normalized gender,
// or nil when the gender has no profile list.
func (s *ProfileSet) ForGender(gender string) []*Profile { return s.byGender[gender] }

// FindProfile looks a profile up by id across all lists, or nil.
func (s *ProfileSet) FindProfile(id string) *Profile {
	for _, p := range s.unisex {
		if p.ID == id {
			return p
		}
	}
	for _, list := range s.byGender {
		for _, p := range list {
			if p.ID == id {
				return p
			}
		}
	}
	return nil
}

// DefaultProfileSet is the production profile enumeration. Thresholds are
// expressed against the built-in catalog's section names.
func DefaultProfileSet() (*ProfileSet, error) {
	unisex := []*Profile{
		{
			ID: "covenant-keeper", Name: "The Covenant Keeper",
			Description: "Anchored by conviction across the board; faith and character lead every other area.",
			MinOverall:  85,
			Criteria: []ProfileCriterion{
				{Section: catalog.SectionFaith, Min: 85},
				{Section: catalog.SectionCharacter, Min: 80},
			},
		},
		{
			ID: "peacemaker", Name: "The Peacemaker",
			Description: "Handles conflict with unusual patience; communication is the relationship's engine.",
			Criteria: []ProfileCriterion{
				{Section: catalog.SectionCommunication, Min: 85},
				{Section: catalog.SectionCharacter, Min: 75},
			},
		},
		{
			ID: "steward", Name: "The Steward",
			Description: "Plans, budgets, and shoulders responsibility; practical foundations come first.",
			Criteria: []ProfileCriterion{
				{Section: catalog.SectionMoney, Min: 85},
				{Section: catalog.SectionRoles, Min: 70},
			},
		},
		{
			ID: "nurturer", Name: "The Nurturer",
			Description: "Family culture and closeness drive decisions; home is the project that matters.",
			Criteria: []ProfileCriterion{
				{Section: catalog.SectionFamily, Min: 85},
				{Section: catalog.SectionIntimacy, Min: 70},
			},
		},
		{
			ID: "devoted-companion", Name: "The Devoted Companion",
			Description: "Leads with affection and loyalty; connection is the first instinct under stress.",
			Criteria: []ProfileCriterion{
				{Section: catalog.SectionIntimacy, Min: 80},
				{Section: catalog.SectionFaith, Min: 60},
			},
		},
		{
			ID: "balanced", Name: "Balanced",
			Description: "No single area dominates; strengths are spread evenly across the assessment.",
		},
	}
	byGender := map[string][]*Profile{
		"male": {
			{
				ID: "servant-leader", Name: "The Servant Leader", Gender: "male",
				Description: "Leads by carrying weight for others first.",
				Criteria: []ProfileCriterion{
					{Section: catalog.SectionFaith, Min: 80},
					{Section: catalog.SectionRoles, Min: 75},
				},
			},
			{
				ID: "provider", Name: "The Provider", Gender: "male",
				Description: "Finds security in planning and provision.",
				Criteria: []ProfileCriterion{
					{Section: catalog.SectionMoney, Min: 80},
				},
			},
			{
				ID: "steady-anchor", Name: "The Steady Anchor", Gender: "male",
				Description: "Consistent and unhurried; stability is the gift.",
			},
		},
		"female": {
			{
				ID: "encourager", Name: "The Encourager", Gender: "female",
				Description: "Builds others up; communication and family warmth lead.",
				Criteria: []ProfileCriterion{
					{Section: catalog.SectionCommunication, Min: 80},
					{Section: catalog.SectionFamily, Min: 70},
				},
			},
			{
				ID: "wise-builder", Name: "The Wise Builder", Gender: "female",
				Description: "Plans the household like an enterprise; stewardship comes naturally.",
				Criteria: []ProfileCriterion{
					{Section: catalog.SectionMoney, Min: 80},
				},
			},
			{
				ID: "gentle-strength", Name: "The Gentle Strength", Gender: "female",
				Description: "Quiet resilience; steadiness under pressure.",
			},
		},
	}
	return NewProfileSet(unisex, byGender)
}
