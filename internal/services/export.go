package services

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
	"time"

	"github.com/truevow/truevow/internal/catalog"
)

// ExportResponsesCSV renders every stored answer in long format, one row per
// response, enriched with the catalog's section and weight so analysts can
// work without joining against question definitions.
func ExportResponsesCSV(cat *catalog.Catalog, assessments []*Assessment) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"assessment_id", "email", "couple_id", "question_id", "section", "selected_option", "value", "weight"})
	for _, a := range sortedByAge(assessments) {
		rs := append([]*Response(nil), a.Responses...)
		sort.Slice(rs, func(i, j int) bool { return rs[i].QuestionID < rs[j].QuestionID })
		for _, r := range rs {
			section, weight := "", 0
			if q := cat.Question(r.QuestionID); q != nil {
				section, weight = q.Section, q.Weight
			}
			rec := []string{
				a.ID,
				a.Demographics.Email,
				a.CoupleID,
				strconv.Itoa(r.QuestionID),
				section,
				r.SelectedOption,
				strconv.Itoa(r.Value),
				strconv.Itoa(weight),
			}
			if err := w.Write(rec); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportScoresCSV renders one row per completed assessment: overall score,
// profile assignment, and one percentage column per section in catalog order.
// Assessments without a result are left out.
func ExportScoresCSV(cat *catalog.Catalog, assessments []*Assessment) ([]byte, error) {
	sections := cat.Sections()
	header := []string{"assessment_id", "email", "couple_id", "overall_percentage", "profile_id", "gender_profile_id", "catalog_version", "completed_at"}
	header = append(header, sections...)

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(header)
	for _, a := range sortedByAge(assessments) {
		if a.Result == nil {
			continue
		}
		completed := ""
		if a.CompletedAt != nil {
			completed = a.CompletedAt.UTC().Format(time.RFC3339)
		}
		rec := []string{
			a.ID,
			a.Demographics.Email,
			a.CoupleID,
			formatPercent(a.Result.OverallPercentage),
			a.ProfileID,
			a.GenderProfileID,
			strconv.Itoa(a.CatalogVersion),
			completed,
		}
		for _, s := range sections {
			rec = append(rec, formatPercent(a.Result.Sections[s].Percentage))
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func sortedByAge(assessments []*Assessment) []*Assessment {
	out := append([]*Assessment(nil), assessments...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
