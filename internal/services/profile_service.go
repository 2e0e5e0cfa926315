package services

// MatchProfile assigns exactly one unisex profile and, when the declared
// gender has a profile list, exactly one gender-specific profile.
//
// Profiles are evaluated in their fixed set order and the first full match
// wins. Profiles are not mutually exclusive by construction, so this order is
// the tie-break and must not be re-sorted. The criteria-less fallback at the
// end of each list guarantees a match always exists.
func MatchProfile(set *ProfileSet, result *ScoreResult, gender string) (*ProfileMatch, error) {
	if set == nil {
		return nil, NewInvalidError("profile set is required")
	}
	if result == nil {
		return nil, NewInvalidError("score result is required")
	}
	match := &ProfileMatch{Primary: firstMatch(set.Unisex(), result)}
	if list := set.ForGender(NormalizeGender(gender)); list != nil {
		match.Gender = firstMatch(list, result)
	}
	return match, nil
}

func firstMatch(list []*Profile, result *ScoreResult) *Profile {
	for _, p := range list {
		if profileSatisfied(p, result) {
			return p
		}
	}
	// unreachable for a validated ProfileSet; kept for safety with hand-built lists
	return nil
}

func profileSatisfied(p *Profile, result *ScoreResult) bool {
	if p.MinOverall > 0 && result.OverallPercentage < p.MinOverall {
		return false
	}
	for _, c := range p.Criteria {
		sec, ok := result.Sections[c.Section]
		if !ok || sec.Percentage < c.Min {
			return false
		}
	}
	return true
}
