package services

import "time"

// Response is one respondent's typed answer to one catalog question.
// Raw submissions are normalized into this shape at the API boundary; the
// engine never sees string-keyed or otherwise duck-typed answer maps.
type Response struct {
	QuestionID     int    `json:"question_id"`
	SelectedOption string `json:"selected_option"`
	// Value is the derived numeric score, 0..question weight. It is filled
	// during submission and recomputed (never edited in place) on recalculation.
	Value int `json:"value"`
}

// Demographics carries the respondent fields the engine consumes. Gender is
// normalized (lowercased, trimmed) before gender-specific profile matching.
type Demographics struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	Gender      string `json:"gender,omitempty"`
	SpouseEmail string `json:"spouse_email,omitempty"`
}

// SectionScore is the earned/possible pair for one catalog section.
type SectionScore struct {
	Earned     int     `json:"earned"`
	Possible   int     `json:"possible"`
	Percentage float64 `json:"percentage"`
}

// ScoreResult is the calculator output for one respondent. It is always
// replaced wholesale, never patched.
type ScoreResult struct {
	TotalEarned       int                     `json:"total_earned"`
	TotalPossible     int                     `json:"total_possible"`
	OverallPercentage float64                 `json:"overall_percentage"`
	Sections          map[string]SectionScore `json:"sections"`
	Strengths         []string                `json:"strengths"`
	ImprovementAreas  []string                `json:"improvement_areas"`
	AnsweredCount     int                     `json:"answered_count"`
	CatalogVersion    int                     `json:"catalog_version"`
}

// ScoreDiagnostics counts responses the calculator had to skip. Skips are
// tolerated so a few corrupted historical records cannot block a batch.
type ScoreDiagnostics struct {
	UnknownQuestion int      `json:"unknown_question"`
	InvalidOption   int      `json:"invalid_option"`
	Notes           []string `json:"notes,omitempty"`
}

// Skipped is the total number of responses excluded from scoring.
func (d *ScoreDiagnostics) Skipped() int {
	return d.UnknownQuestion + d.InvalidOption
}

// ProfileCriterion is a single declarative matching rule: the named section's
// percentage must be at least Min.
type ProfileCriterion struct {
	Section string  `json:"section"`
	Min     float64 `json:"min"`
}

// Profile is one entry of the fixed psychographic profile enumeration.
// Gender is empty for unisex profiles. Criteria order does not matter within
// a profile; profile order within a set is the tie-break and is contractual.
type Profile struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Gender      string             `json:"gender,omitempty"`
	MinOverall  float64            `json:"min_overall,omitempty"`
	Criteria    []ProfileCriterion `json:"criteria,omitempty"`
}

// ProfileMatch pairs the assigned unisex profile with the optional
// gender-specific one.
type ProfileMatch struct {
	Primary *Profile `json:"primary"`
	Gender  *Profile `json:"gender,omitempty"`
}

// Assessment is one respondent's stored submission: demographics, raw
// responses, and (once complete) the computed result and profile assignment.
type Assessment struct {
	ID              string       `json:"id"`
	Demographics    Demographics `json:"demographics"`
	CoupleID        string       `json:"couple_id,omitempty"`
	Responses       []*Response  `json:"responses,omitempty"`
	Result          *ScoreResult `json:"result,omitempty"`
	ProfileID       string       `json:"profile_id,omitempty"`
	GenderProfileID string       `json:"gender_profile_id,omitempty"`
	CatalogVersion  int          `json:"catalog_version,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
}

// Complete reports whether the assessment has a computed result.
func (a *Assessment) Complete() bool { return a.CompletedAt != nil && a.Result != nil }

// QuestionDifference is one materially different answer within a couple.
type QuestionDifference struct {
	QuestionID    int     `json:"question_id"`
	QuestionText  string  `json:"question_text"`
	PrimaryAnswer string  `json:"primary_answer"`
	SpouseAnswer  string  `json:"spouse_answer"`
	Magnitude     float64 `json:"magnitude"`
}

// DifferenceAnalysis summarizes where a couple agrees and diverges.
type DifferenceAnalysis struct {
	StrengthAreas      []string             `json:"strength_areas"`
	VulnerabilityAreas []string             `json:"vulnerability_areas"`
	SectionDeltas      map[string]float64   `json:"section_deltas"`
	MajorDifferences   []QuestionDifference `json:"major_differences"`
}

// AssessmentBundle is the per-spouse slice of a couple report.
type AssessmentBundle struct {
	AssessmentID string       `json:"assessment_id"`
	Demographics Demographics `json:"demographics"`
	Result       *ScoreResult `json:"result"`
	Profile      ProfileMatch `json:"profile"`
}

// CoupleReport is the immutable joint report for a paired couple. A new
// submission by either spouse regenerates the whole report.
type CoupleReport struct {
	CoupleID             string             `json:"couple_id"`
	Primary              AssessmentBundle   `json:"primary_assessment"`
	Spouse               AssessmentBundle   `json:"spouse_assessment"`
	Analysis             DifferenceAnalysis `json:"difference_analysis"`
	OverallCompatibility float64            `json:"overall_compatibility"`
	GeneratedAt          time.Time          `json:"generated_at"`
}
