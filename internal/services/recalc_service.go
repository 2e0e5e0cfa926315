package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/truevow/truevow/internal/catalog"
)

// RecalcStore is the slice of persistence the recalculation driver touches.
// Raw responses are read-only to the driver: recomputation replaces results,
// never stored answers.
type RecalcStore interface {
	ListCompletedAssessments(f RecalcFilter) ([]*Assessment, error)
	ListResponses(assessmentID string) ([]*Response, error)
	UpdateAssessment(a *Assessment) error
}

// RecalcFilter narrows a recalculation batch. Zero values mean "no filter".
type RecalcFilter struct {
	Emails []string  `json:"emails,omitempty"`
	From   time.Time `json:"from,omitempty"`
	To     time.Time `json:"to,omitempty"`
}

func (f RecalcFilter) matches(a *Assessment) bool {
	if len(f.Emails) > 0 {
		found := false
		for _, e := range f.Emails {
			if e == a.Demographics.Email {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.From.IsZero() && a.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && a.CreatedAt.After(f.To) {
		return false
	}
	return true
}

// RecalcReport aggregates per-record outcomes for one batch run.
type RecalcReport struct {
	Processed        int      `json:"processed"`
	Updated          int      `json:"updated"`
	Skipped          int      `json:"skipped"`
	Errors           int      `json:"errors"`
	SkippedResponses int      `json:"skipped_responses"`
	ErrorDetails     []string `json:"error_details,omitempty"`
}

// RecalcService re-runs the scoring pipeline over stored assessments whose
// result is missing or was computed under a stale catalog version. Safe to
// re-run: a second pass over unchanged records updates nothing.
type RecalcService struct {
	store    RecalcStore
	catalog  *catalog.Catalog
	profiles *ProfileSet
	logger   *zap.Logger
	now      func() time.Time
}

func NewRecalcService(store RecalcStore, cat *catalog.Catalog, profiles *ProfileSet, logger *zap.Logger) *RecalcService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecalcService{
		store:    store,
		catalog:  cat,
		profiles: profiles,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one batch. Per-record failures are logged with identifying
// context and counted; they never abort the rest of the batch.
func (s *RecalcService) Run(filter RecalcFilter) (*RecalcReport, error) {
	assessments, err := s.store.ListCompletedAssessments(filter)
	if err != nil {
		return nil, err
	}
	report := &RecalcReport{}
	for _, a := range assessments {
		if !filter.matches(a) {
			continue
		}
		report.Processed++
		if a.Result != nil && a.CatalogVersion == s.catalog.Version() {
			report.Skipped++
			continue
		}
		if err := s.recalcOne(a, report); err != nil {
			report.Errors++
			report.ErrorDetails = append(report.ErrorDetails, a.Demographics.Email+": "+err.Error())
			s.logger.Warn("recalculation failed for record",
				zap.String("assessment_id", a.ID),
				zap.String("email", a.Demographics.Email),
				zap.Time("created_at", a.CreatedAt),
				zap.Error(err))
		}
	}
	s.logger.Info("recalculation batch finished",
		zap.Int("processed", report.Processed),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
		zap.Int("catalog_version", s.catalog.Version()))
	return report, nil
}

func (s *RecalcService) recalcOne(a *Assessment, report *RecalcReport) error {
	responses, err := s.store.ListResponses(a.ID)
	if err != nil {
		return err
	}
	// Lenient path: corrupted historical answers are skipped and surfaced in
	// the batch counts instead of blocking the record.
	result, diag, err := CalculateScore(s.catalog, responses)
	if err != nil {
		return err
	}
	report.SkippedResponses += diag.Skipped()
	if diag.Skipped() > 0 {
		s.logger.Warn("skipped malformed responses during recalculation",
			zap.String("assessment_id", a.ID),
			zap.String("email", a.Demographics.Email),
			zap.Int("unknown_question", diag.UnknownQuestion),
			zap.Int("invalid_option", diag.InvalidOption))
	}
	match, err := MatchProfile(s.profiles, result, a.Demographics.Gender)
	if err != nil {
		return err
	}

	a.Result = result
	a.ProfileID = match.Primary.ID
	a.GenderProfileID = ""
	if match.Gender != nil {
		a.GenderProfileID = match.Gender.ID
	}
	a.CatalogVersion = s.catalog.Version()
	if a.CompletedAt == nil {
		now := s.now()
		a.CompletedAt = &now
	}
	if err := s.store.UpdateAssessment(a); err != nil {
		return err
	}
	report.Updated++
	return nil
}
