package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/truevow/truevow/internal/catalog"
)

// AssessmentStore abstracts the persistence operations the submission
// workflow needs.
type AssessmentStore interface {
	InsertAssessment(a *Assessment) error
	GetAssessment(id string) (*Assessment, error)
	UpdateAssessment(a *Assessment) error
	AddResponses(assessmentID string, rs []*Response) error
	ListResponses(assessmentID string) ([]*Response, error)
	ListAssessmentsByCouple(coupleID string) ([]*Assessment, error)
	SaveCoupleReport(r *CoupleReport) error
	GetCoupleReport(coupleID string) (*CoupleReport, error)
}

// AnswerInput mirrors one inbound answer before boundary normalization.
// QuestionKey accepts the historical shapes ("12", "Q12") alongside a plain
// numeric id; exactly one of QuestionID/QuestionKey must be set.
type AnswerInput struct {
	QuestionID     int             `json:"question_id,omitempty"`
	QuestionKey    string          `json:"question_key,omitempty"`
	SelectedOption string          `json:"selected_option"`
	Raw            json.RawMessage `json:"raw,omitempty"`
}

// AssessmentService hosts the submission workflow: start, answer, complete.
// Completion runs the scoring pipeline and profile matcher and stores the
// result wholesale; raw responses are never edited afterwards.
type AssessmentService struct {
	store    AssessmentStore
	catalog  *catalog.Catalog
	profiles *ProfileSet
	now      func() time.Time
	idGen    func() string
}

// NewAssessmentService constructs the service bound to a store, catalog, and
// validated profile set.
func NewAssessmentService(store AssessmentStore, cat *catalog.Catalog, profiles *ProfileSet) *AssessmentService {
	return &AssessmentService{
		store:    store,
		catalog:  cat,
		profiles: profiles,
		now:      func() time.Time { return time.Now().UTC() },
		idGen:    shortID,
	}
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Start creates a new assessment for the given respondent. A non-empty
// coupleID joins an existing pair (at most two assessments per couple);
// an empty one leaves the assessment unpaired until JoinCouple.
func (s *AssessmentService) Start(dem Demographics, coupleID string) (*Assessment, error) {
	if strings.TrimSpace(dem.Email) == "" {
		return nil, NewInvalidError("email is required")
	}
	dem.Email = strings.ToLower(strings.TrimSpace(dem.Email))
	dem.Gender = NormalizeGender(dem.Gender)
	a := &Assessment{
		ID:           s.idGen(),
		Demographics: dem,
		CreatedAt:    s.now(),
	}
	if coupleID != "" {
		if err := s.checkCoupleCapacity(coupleID, a.ID); err != nil {
			return nil, err
		}
		a.CoupleID = coupleID
	}
	if err := s.store.InsertAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

// JoinCouple pairs an existing assessment into a couple. When coupleID is
// empty a fresh couple id is minted, to be shared with the spouse.
func (s *AssessmentService) JoinCouple(assessmentID, coupleID string) (*Assessment, error) {
	a, err := s.getAssessment(assessmentID)
	if err != nil {
		return nil, err
	}
	if a.CoupleID != "" && coupleID != "" && a.CoupleID != coupleID {
		return nil, NewConflictError("assessment already belongs to a different couple")
	}
	if coupleID == "" {
		coupleID = s.idGen()
	} else if err := s.checkCoupleCapacity(coupleID, a.ID); err != nil {
		return nil, err
	}
	a.CoupleID = coupleID
	if err := s.store.UpdateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) checkCoupleCapacity(coupleID, selfID string) error {
	existing, err := s.store.ListAssessmentsByCouple(coupleID)
	if err != nil {
		return err
	}
	others := 0
	for _, e := range existing {
		if e.ID != selfID {
			others++
		}
	}
	if others >= 2 {
		return NewConflictError("couple already has two assessments")
	}
	return nil
}

// SubmitAnswers validates and normalizes a batch of answers and appends them
// to the assessment. Live submissions are strict: an unknown question or an
// option outside the catalog rejects the batch, since the respondent is about
// to pay for what these answers produce.
func (s *AssessmentService) SubmitAnswers(assessmentID string, answers []AnswerInput) (int, error) {
	a, err := s.getAssessment(assessmentID)
	if err != nil {
		return 0, err
	}
	if a.Complete() {
		return 0, NewConflictError("assessment is complete; answers are immutable")
	}

	responses := make([]*Response, 0, len(answers))
	for _, in := range answers {
		id := in.QuestionID
		if id == 0 && in.QuestionKey != "" {
			id, err = ParseQuestionKey(in.QuestionKey)
			if err != nil {
				return 0, err
			}
		}
		q := s.catalog.Question(id)
		if q == nil {
			return 0, NewInvalidResponseError(fmt.Sprintf("question %d not in catalog", id))
		}
		value, err := NormalizeResponse(q, in.SelectedOption)
		if err != nil {
			return 0, err
		}
		responses = append(responses, &Response{
			QuestionID:     q.ID,
			SelectedOption: strings.TrimSpace(in.SelectedOption),
			Value:          value,
		})
	}
	if len(responses) == 0 {
		return 0, NewInvalidError("no answers submitted")
	}
	if err := s.store.AddResponses(a.ID, responses); err != nil {
		return 0, err
	}
	return len(responses), nil
}

// Complete runs the calculator and profile matcher over everything answered
// so far and persists the result. The stored result is replaced wholesale;
// a prior result for this assessment is superseded, never patched.
func (s *AssessmentService) Complete(assessmentID string) (*Assessment, error) {
	a, err := s.getAssessment(assessmentID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses(a.ID)
	if err != nil {
		return nil, err
	}
	result, _, err := CalculateScore(s.catalog, responses)
	if err != nil {
		return nil, err
	}
	match, err := MatchProfile(s.profiles, result, a.Demographics.Gender)
	if err != nil {
		return nil, err
	}

	now := s.now()
	a.Responses = responses
	a.Result = result
	a.ProfileID = match.Primary.ID
	if match.Gender != nil {
		a.GenderProfileID = match.Gender.ID
	}
	a.CatalogVersion = s.catalog.Version()
	a.CompletedAt = &now
	if err := s.store.UpdateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Result loads a completed assessment with its responses and profile match.
func (s *AssessmentService) Result(assessmentID string) (*Assessment, *ProfileMatch, error) {
	a, err := s.getAssessment(assessmentID)
	if err != nil {
		return nil, nil, err
	}
	if !a.Complete() {
		return nil, nil, NewNotFoundError("assessment has no result yet")
	}
	match := &ProfileMatch{Primary: s.profiles.FindProfile(a.ProfileID)}
	if a.GenderProfileID != "" {
		match.Gender = s.profiles.FindProfile(a.GenderProfileID)
	}
	return a, match, nil
}

// CoupleReport returns the joint report for a couple, generating or
// regenerating it when either side has completed since the last generation.
// While one side is missing or incomplete the couple is pending.
func (s *AssessmentService) CoupleReport(coupleID string) (*CoupleReport, error) {
	members, err := s.store.ListAssessmentsByCouple(coupleID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, NewNotFoundError("couple not found")
	}
	if len(members) < 2 {
		return nil, NewCouplePendingError("waiting for the second assessment")
	}
	primary, spouse := members[0], members[1]
	if !primary.Complete() || !spouse.Complete() {
		return nil, NewCouplePendingError("waiting for both assessments to be completed")
	}

	if cached, err := s.store.GetCoupleReport(coupleID); err == nil && cached != nil {
		if !cached.GeneratedAt.Before(*primary.CompletedAt) && !cached.GeneratedAt.Before(*spouse.CompletedAt) {
			return cached, nil
		}
	}

	if err := s.loadResponses(primary); err != nil {
		return nil, err
	}
	if err := s.loadResponses(spouse); err != nil {
		return nil, err
	}
	analysis, compatibility, err := AnalyzeCouple(s.catalog, primary, spouse)
	if err != nil {
		return nil, err
	}
	report := &CoupleReport{
		CoupleID:             coupleID,
		Primary:              s.bundle(primary),
		Spouse:               s.bundle(spouse),
		Analysis:             *analysis,
		OverallCompatibility: compatibility,
		GeneratedAt:          s.now(),
	}
	if err := s.store.SaveCoupleReport(report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *AssessmentService) loadResponses(a *Assessment) error {
	if len(a.Responses) > 0 {
		return nil
	}
	rs, err := s.store.ListResponses(a.ID)
	if err != nil {
		return err
	}
	a.Responses = rs
	return nil
}

func (s *AssessmentService) bundle(a *Assessment) AssessmentBundle {
	b := AssessmentBundle{
		AssessmentID: a.ID,
		Demographics: a.Demographics,
		Result:       a.Result,
		Profile:      ProfileMatch{Primary: s.profiles.FindProfile(a.ProfileID)},
	}
	if a.GenderProfileID != "" {
		b.Profile.Gender = s.profiles.FindProfile(a.GenderProfileID)
	}
	return b
}

func (s *AssessmentService) getAssessment(id string) (*Assessment, error) {
	if s.store == nil {
		return nil, NewInvalidError("assessment store is nil")
	}
	a, err := s.store.GetAssessment(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, NewNotFoundError("assessment not found")
	}
	return a, nil
}
