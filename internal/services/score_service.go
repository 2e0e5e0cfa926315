package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/truevow/truevow/internal/catalog"
)

// MinAnsweredQuestions is the minimum number of distinct, valid answers
// required before a score result is produced. Partial-save UIs and
// completeness checks depend on this value, so it is part of the contract.
const MinAnsweredQuestions = 10

const (
	strengthsCount        = 3
	improvementAreasCount = 2
)

// CalculateScore runs the full scoring pipeline over one respondent's
// responses: normalization checks, per-section aggregation, percentage
// rounding, and strengths ranking.
//
// Malformed responses (unknown question id, option outside the catalog) are
// skipped and counted in the returned diagnostics rather than failing the
// whole calculation. Fewer than MinAnsweredQuestions valid answers yields an
// insufficient_responses error and no result — never a zero-filled result.
//
// Possible points come from the catalog, not from what was answered: every
// section with at least one scored question appears in the result, and an
// unanswered question still counts against its section's possible total.
// This keeps sum(section.possible) == TotalPossible regardless of coverage.
func CalculateScore(cat *catalog.Catalog, responses []*Response) (*ScoreResult, *ScoreDiagnostics, error) {
	if cat == nil {
		return nil, nil, NewInvalidError("catalog is required")
	}
	diag := &ScoreDiagnostics{}

	earnedBySection := map[string]int{}
	answered := map[int]bool{}
	for _, r := range responses {
		if r == nil {
			continue
		}
		q := cat.Question(r.QuestionID)
		if q == nil {
			diag.UnknownQuestion++
			diag.Notes = append(diag.Notes, fmt.Sprintf("question %d not in catalog", r.QuestionID))
			continue
		}
		if !q.Scored() {
			continue
		}
		if answered[q.ID] {
			// duplicate answers for a question keep the first occurrence
			continue
		}
		value, err := NormalizeResponse(q, r.SelectedOption)
		if err != nil {
			diag.InvalidOption++
			diag.Notes = append(diag.Notes, err.Error())
			continue
		}
		answered[q.ID] = true
		earnedBySection[q.Section] += value
	}

	// Small catalogs (tests, previews) cap the threshold at their own size.
	minAnswers := MinAnsweredQuestions
	if scored := cat.ScoredCount(); scored < minAnswers {
		minAnswers = scored
	}
	if len(answered) < minAnswers {
		return nil, diag, NewInsufficientResponsesError(
			fmt.Sprintf("%d valid answers, need at least %d", len(answered), minAnswers))
	}

	possibleBySection := cat.PossibleBySection()
	sections := make(map[string]SectionScore, len(possibleBySection))
	totalEarned, totalPossible := 0, 0
	for name, possible := range possibleBySection {
		earned := earnedBySection[name]
		sections[name] = SectionScore{
			Earned:     earned,
			Possible:   possible,
			Percentage: roundPercent(earned, possible),
		}
		totalEarned += earned
		totalPossible += possible
	}

	ranked := rankSections(cat, sections)
	result := &ScoreResult{
		TotalEarned:       totalEarned,
		TotalPossible:     totalPossible,
		OverallPercentage: roundPercent(totalEarned, totalPossible),
		Sections:          sections,
		Strengths:         head(ranked, strengthsCount),
		ImprovementAreas:  tail(ranked, strengthsCount, improvementAreasCount),
		AnsweredCount:     len(answered),
		CatalogVersion:    cat.Version(),
	}
	return result, diag, nil
}

// roundPercent computes earned/possible as a percentage with one-decimal
// rounding, or 0 when possible is 0.
func roundPercent(earned, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	return math.Round(float64(earned)/float64(possible)*1000) / 10
}

// rankSections orders section names by percentage descending; ties keep
// catalog order so the ranking is deterministic.
func rankSections(cat *catalog.Catalog, sections map[string]SectionScore) []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		pi, pj := sections[names[i]].Percentage, sections[names[j]].Percentage
		if pi != pj {
			return pi > pj
		}
		return cat.SectionIndex(names[i]) < cat.SectionIndex(names[j])
	})
	return names
}

func head(ranked []string, n int) []string {
	if n > len(ranked) {
		n = len(ranked)
	}
	return append([]string(nil), ranked[:n]...)
}

// tail returns up to n of the lowest-ranked sections, lowest first, without
// overlapping the first `used` entries already claimed as strengths.
func tail(ranked []string, used, n int) []string {
	avail := len(ranked) - used
	if avail <= 0 {
		return []string{}
	}
	if n > avail {
		n = avail
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ranked[len(ranked)-1-i])
	}
	return out
}
