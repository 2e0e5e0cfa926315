package services

import (
	"math"
	"sort"

	"github.com/truevow/truevow/internal/catalog"
)

// Tunables for the couple difference analysis. Thresholds are percentages of
// a question's weight (per-question) or section percentage points
// (per-section).
const (
	// MajorDifferenceRatio classifies a per-question difference as major when
	// |a-b| is at least this share of the question's weight.
	MajorDifferenceRatio = 0.5
	// SectionCloseDelta and SectionFarDelta split section deltas into
	// strength / neutral / vulnerability bands.
	SectionCloseDelta = 10.0
	SectionFarDelta   = 25.0
	// MaxMajorDifferences caps the list handed to the report layer.
	MaxMajorDifferences = 10
)

// Blend coefficients for the overall compatibility percentage. Agreement
// (inverse of average section delta) dominates, but both spouses' overall
// scores pull the number up or down so low-scoring agreement does not read
// as a strong match.
const (
	agreementBlendWeight = 0.6
	scoreBlendWeight     = 0.4
)

// AnalyzeCouple compares two completed assessments sharing a couple pair and
// produces the difference analysis plus the overall compatibility percentage.
//
// Both assessments must carry a computed score result; otherwise the couple
// is still pending and no analysis is produced. Compatibility is monotone:
// shrinking section deltas can only raise it, and raising either spouse's
// overall score can only raise it.
func AnalyzeCouple(cat *catalog.Catalog, primary, spouse *Assessment) (*DifferenceAnalysis, float64, error) {
	if cat == nil {
		return nil, 0, NewInvalidError("catalog is required")
	}
	if primary == nil || spouse == nil || !primary.Complete() || !spouse.Complete() {
		return nil, 0, NewCouplePendingError("both assessments must be complete before comparison")
	}

	analysis := &DifferenceAnalysis{
		StrengthAreas:      []string{},
		VulnerabilityAreas: []string{},
		SectionDeltas:      map[string]float64{},
		MajorDifferences:   compareResponses(cat, primary.Responses, spouse.Responses),
	}

	var deltaSum float64
	var deltaCount int
	for _, section := range cat.Sections() {
		pa, okA := primary.Result.Sections[section]
		pb, okB := spouse.Result.Sections[section]
		if !okA || !okB {
			continue
		}
		delta := math.Abs(pa.Percentage - pb.Percentage)
		analysis.SectionDeltas[section] = delta
		deltaSum += delta
		deltaCount++
		switch {
		case delta < SectionCloseDelta:
			analysis.StrengthAreas = append(analysis.StrengthAreas, section)
		case delta > SectionFarDelta:
			analysis.VulnerabilityAreas = append(analysis.VulnerabilityAreas, section)
		}
		// deltas in between are neutral: visible in SectionDeltas only
	}

	avgDelta := 0.0
	if deltaCount > 0 {
		avgDelta = deltaSum / float64(deltaCount)
	}
	avgOverall := (primary.Result.OverallPercentage + spouse.Result.OverallPercentage) / 2
	compatibility := agreementBlendWeight*(100-avgDelta) + scoreBlendWeight*avgOverall
	compatibility = math.Round(compatibility*10) / 10
	if compatibility < 0 {
		compatibility = 0
	}
	if compatibility > 100 {
		compatibility = 100
	}
	return analysis, compatibility, nil
}

// compareResponses classifies per-question differences for every question
// both spouses answered, using the question weight as the scale.
func compareResponses(cat *catalog.Catalog, primary, spouse []*Response) []QuestionDifference {
	spouseByID := make(map[int]*Response, len(spouse))
	for _, r := range spouse {
		if r != nil {
			spouseByID[r.QuestionID] = r
		}
	}

	diffs := []QuestionDifference{}
	for _, a := range primary {
		if a == nil {
			continue
		}
		b, ok := spouseByID[a.QuestionID]
		if !ok {
			continue
		}
		q := cat.Question(a.QuestionID)
		if q == nil || !q.Scored() || q.Weight <= 0 {
			continue
		}
		magnitude := math.Abs(float64(a.Value)-float64(b.Value)) / float64(q.Weight)
		if magnitude < MajorDifferenceRatio {
			continue
		}
		diffs = append(diffs, QuestionDifference{
			QuestionID:    q.ID,
			QuestionText:  q.Text,
			PrimaryAnswer: a.SelectedOption,
			SpouseAnswer:  b.SelectedOption,
			Magnitude:     math.Round(magnitude*100) / 100,
		})
	}

	sort.SliceStable(diffs, func(i, j int) bool {
		if diffs[i].Magnitude != diffs[j].Magnitude {
			return diffs[i].Magnitude > diffs[j].Magnitude
		}
		return diffs[i].QuestionID < diffs[j].QuestionID
	})
	if len(diffs) > MaxMajorDifferences {
		diffs = diffs[:MaxMajorDifferences]
	}
	return diffs
}
