package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/truevow/truevow/internal/catalog"
)

type stubAssessmentStore struct {
	assessments map[string]*Assessment
	responses   map[string][]*Response
	reports     map[string]*CoupleReport
	saves       int
}

func newStubStore() *stubAssessmentStore {
	return &stubAssessmentStore{
		assessments: map[string]*Assessment{},
		responses:   map[string][]*Response{},
		reports:     map[string]*CoupleReport{},
	}
}

func (s *stubAssessmentStore) InsertAssessment(a *Assessment) error {
	cp := *a
	s.assessments[a.ID] = &cp
	return nil
}

func (s *stubAssessmentStore) GetAssessment(id string) (*Assessment, error) {
	a, ok := s.assessments[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *stubAssessmentStore) UpdateAssessment(a *Assessment) error {
	if _, ok := s.assessments[a.ID]; !ok {
		return fmt.Errorf("assessment %s not found", a.ID)
	}
	cp := *a
	s.assessments[a.ID] = &cp
	return nil
}

func (s *stubAssessmentStore) AddResponses(id string, rs []*Response) error {
	s.responses[id] = append(s.responses[id], rs...)
	return nil
}

func (s *stubAssessmentStore) ListResponses(id string) ([]*Response, error) {
	return append([]*Response(nil), s.responses[id]...), nil
}

func (s *stubAssessmentStore) ListAssessmentsByCouple(coupleID string) ([]*Assessment, error) {
	var out []*Assessment
	for _, a := range s.assessments {
		if a.CoupleID == coupleID && coupleID != "" {
			cp := *a
			out = append(out, &cp)
		}
	}
	// deterministic order: oldest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.Before(out[i].CreatedAt) ||
				(out[j].CreatedAt.Equal(out[i].CreatedAt) && out[j].ID < out[i].ID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *stubAssessmentStore) SaveCoupleReport(r *CoupleReport) error {
	cp := *r
	s.reports[r.CoupleID] = &cp
	s.saves++
	return nil
}

func (s *stubAssessmentStore) GetCoupleReport(coupleID string) (*CoupleReport, error) {
	return s.reports[coupleID], nil
}

func testService(t *testing.T, store AssessmentStore) *AssessmentService {
	t.Helper()
	profiles, err := DefaultProfileSet()
	if err != nil {
		t.Fatalf("DefaultProfileSet: %v", err)
	}
	svc := NewAssessmentService(store, catalog.Default(), profiles)
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time { n++; return base.Add(time.Duration(n) * time.Minute) }
	seq := 0
	svc.idGen = func() string { seq++; return fmt.Sprintf("ID%04d", seq) }
	return svc
}

func answerAll(t *testing.T, svc *AssessmentService, id string) {
	t.Helper()
	cat := catalog.Default()
	var answers []AnswerInput
	for _, q := range cat.Questions() {
		if !q.Scored() {
			continue
		}
		opt := q.Options[len(q.Options)-1]
		if q.Type == catalog.TypeDeclaration {
			opt = q.Options[0]
		}
		answers = append(answers, AnswerInput{QuestionID: q.ID, SelectedOption: opt})
	}
	if _, err := svc.SubmitAnswers(id, answers); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
}

func TestStartRequiresEmail(t *testing.T) {
	svc := testService(t, newStubStore())
	if _, err := svc.Start(Demographics{}, ""); !IsCode(err, ErrorInvalid) {
		t.Fatalf("got %v, want invalid", err)
	}
}

func TestSubmitAnswersStrictValidation(t *testing.T) {
	store := newStubStore()
	svc := testService(t, store)
	a, err := svc.Start(Demographics{Email: "Pat@Example.com", Gender: " Female "}, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if a.Demographics.Email != "pat@example.com" || a.Demographics.Gender != "female" {
		t.Fatalf("demographics not normalized: %+v", a.Demographics)
	}

	// unknown question rejects the whole batch
	_, err = svc.SubmitAnswers(a.ID, []AnswerInput{{QuestionID: 9999, SelectedOption: "Always"}})
	if !IsCode(err, ErrorInvalidResponse) {
		t.Fatalf("unknown question: got %v, want invalid_response", err)
	}
	// option outside the catalog rejects too
	_, err = svc.SubmitAnswers(a.ID, []AnswerInput{{QuestionID: 1, SelectedOption: "Not An Option"}})
	if !IsCode(err, ErrorInvalidResponse) {
		t.Fatalf("bad option: got %v, want invalid_response", err)
	}
	if len(store.responses[a.ID]) != 0 {
		t.Fatalf("rejected batches must not be stored, got %d", len(store.responses[a.ID]))
	}

	// legacy string keys normalize at the boundary
	n, err := svc.SubmitAnswers(a.ID, []AnswerInput{{QuestionKey: "Q1", SelectedOption: "Often"}})
	if err != nil || n != 1 {
		t.Fatalf("SubmitAnswers legacy key = (%d, %v), want (1, nil)", n, err)
	}
	if got := store.responses[a.ID][0]; got.QuestionID != 1 || got.Value != 4 {
		t.Fatalf("stored response = %+v, want question 1 value 4", got)
	}
}

func TestCompleteComputesResultAndProfile(t *testing.T) {
	store := newStubStore()
	svc := testService(t, store)
	a, err := svc.Start(Demographics{Email: "pat@example.com", Gender: "female"}, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	answerAll(t, svc, a.ID)
	done, err := svc.Complete(a.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !done.Complete() {
		t.Fatal("assessment should be complete")
	}
	if done.Result.OverallPercentage <= 0 || done.Result.OverallPercentage > 100 {
		t.Fatalf("overall = %v", done.Result.OverallPercentage)
	}
	if done.ProfileID == "" || done.GenderProfileID == "" {
		t.Fatalf("profiles not assigned: %q / %q", done.ProfileID, done.GenderProfileID)
	}
	if done.CatalogVersion != catalog.DefaultVersion {
		t.Fatalf("catalog version = %d, want %d", done.CatalogVersion, catalog.DefaultVersion)
	}

	// completed assessments reject further answers
	_, err = svc.SubmitAnswers(a.ID, []AnswerInput{{QuestionID: 1, SelectedOption: "Often"}})
	if !IsCode(err, ErrorConflict) {
		t.Fatalf("got %v, want conflict", err)
	}

	_, match, err := svc.Result(a.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if match.Primary == nil || match.Primary.ID != done.ProfileID {
		t.Fatalf("result profile = %+v, want %q", match.Primary, done.ProfileID)
	}
}

func TestCompleteInsufficientAnswers(t *testing.T) {
	svc := testService(t, newStubStore())
	a, err := svc.Start(Demographics{Email: "pat@example.com"}, "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.SubmitAnswers(a.ID, []AnswerInput{{QuestionID: 1, SelectedOption: "Often"}}); err != nil {
		t.Fatalf("SubmitAnswers: %v", err)
	}
	if _, err := svc.Complete(a.ID); !IsCode(err, ErrorInsufficientResponses) {
		t.Fatalf("got %v, want insufficient_responses", err)
	}
}

func TestCoupleReportLifecycle(t *testing.T) {
	store := newStubStore()
	svc := testService(t, store)

	a, err := svc.Start(Demographics{Email: "a@example.com", Gender: "male"}, "")
	if err != nil {
		t.Fatalf("Start a: %v", err)
	}
	a, err = svc.JoinCouple(a.ID, "")
	if err != nil {
		t.Fatalf("JoinCouple: %v", err)
	}
	coupleID := a.CoupleID
	if coupleID == "" {
		t.Fatal("couple id not minted")
	}

	// single member: pending
	if _, err := svc.CoupleReport(coupleID); !IsCode(err, ErrorCouplePending) {
		t.Fatalf("got %v, want couple_pending", err)
	}

	b, err := svc.Start(Demographics{Email: "b@example.com", Gender: "female"}, coupleID)
	if err != nil {
		t.Fatalf("Start b: %v", err)
	}

	// both present, neither complete: still pending
	if _, err := svc.CoupleReport(coupleID); !IsCode(err, ErrorCouplePending) {
		t.Fatalf("got %v, want couple_pending", err)
	}

	answerAll(t, svc, a.ID)
	if _, err := svc.Complete(a.ID); err != nil {
		t.Fatalf("Complete a: %v", err)
	}
	if _, err := svc.CoupleReport(coupleID); !IsCode(err, ErrorCouplePending) {
		t.Fatalf("one side complete: got %v, want couple_pending", err)
	}

	answerAll(t, svc, b.ID)
	if _, err := svc.Complete(b.ID); err != nil {
		t.Fatalf("Complete b: %v", err)
	}

	report, err := svc.CoupleReport(coupleID)
	if err != nil {
		t.Fatalf("CoupleReport: %v", err)
	}
	if report.Primary.AssessmentID != a.ID || report.Spouse.AssessmentID != b.ID {
		t.Fatalf("bundle order = (%s, %s), want oldest first (%s, %s)",
			report.Primary.AssessmentID, report.Spouse.AssessmentID, a.ID, b.ID)
	}
	if report.OverallCompatibility <= 0 {
		t.Fatalf("compatibility = %v", report.OverallCompatibility)
	}
	if store.saves != 1 {
		t.Fatalf("report saves = %d, want 1", store.saves)
	}

	// cached report is reused while nothing changed
	if _, err := svc.CoupleReport(coupleID); err != nil {
		t.Fatalf("CoupleReport cached: %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("cached fetch regenerated the report (saves=%d)", store.saves)
	}

	// a new completion regenerates the report rather than patching it
	if _, err := svc.Complete(b.ID); err != nil {
		t.Fatalf("recomplete b: %v", err)
	}
	if _, err := svc.CoupleReport(coupleID); err != nil {
		t.Fatalf("CoupleReport after resubmit: %v", err)
	}
	if store.saves != 2 {
		t.Fatalf("report saves = %d, want regeneration", store.saves)
	}
}

func TestJoinCoupleCapacity(t *testing.T) {
	svc := testService(t, newStubStore())
	a, _ := svc.Start(Demographics{Email: "a@example.com"}, "")
	a, err := svc.JoinCouple(a.ID, "")
	if err != nil {
		t.Fatalf("JoinCouple: %v", err)
	}
	if _, err := svc.Start(Demographics{Email: "b@example.com"}, a.CoupleID); err != nil {
		t.Fatalf("Start b: %v", err)
	}
	if _, err := svc.Start(Demographics{Email: "c@example.com"}, a.CoupleID); !IsCode(err, ErrorConflict) {
		t.Fatalf("third member: got %v, want conflict", err)
	}
}
