package api

import (
	"fmt"
	"sort"
	"sync"

	"github.com/truevow/truevow/internal/services"
)

// memoryStore keeps everything in process. It is the default store for tests
// and local development; production deployments use the SQLite store.
type memoryStore struct {
	mu          sync.RWMutex
	assessments map[string]*services.Assessment
	responses   map[string][]*services.Response
	reports     map[string]*services.CoupleReport
}

func NewMemoryStore() Store {
	return &memoryStore{
		assessments: map[string]*services.Assessment{},
		responses:   map[string][]*services.Response{},
		reports:     map[string]*services.CoupleReport{},
	}
}

func (s *memoryStore) InsertAssessment(a *services.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[a.ID]; ok {
		return fmt.Errorf("assessment %s already exists", a.ID)
	}
	cp := *a
	s.assessments[a.ID] = &cp
	return nil
}

func (s *memoryStore) GetAssessment(id string) (*services.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *memoryStore) UpdateAssessment(a *services.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[a.ID]; !ok {
		return fmt.Errorf("assessment %s not found", a.ID)
	}
	cp := *a
	s.assessments[a.ID] = &cp
	return nil
}

func (s *memoryStore) AddResponses(assessmentID string, rs []*services.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rs {
		cp := *r
		s.responses[assessmentID] = append(s.responses[assessmentID], &cp)
	}
	return nil
}

func (s *memoryStore) ListResponses(assessmentID string) ([]*services.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*services.Response, 0, len(s.responses[assessmentID]))
	for _, r := range s.responses[assessmentID] {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

// ListAssessmentsByCouple returns couple members oldest first so the first
// member is always the report's primary side.
func (s *memoryStore) ListAssessmentsByCouple(coupleID string) ([]*services.Assessment, error) {
	if coupleID == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*services.Assessment
	for _, a := range s.assessments {
		if a.CoupleID == coupleID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortByAge(out)
	return out, nil
}

func (s *memoryStore) SaveCoupleReport(r *services.CoupleReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reports[r.CoupleID] = &cp
	return nil
}

func (s *memoryStore) GetCoupleReport(coupleID string) (*services.CoupleReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[coupleID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *memoryStore) ListAssessments() ([]*services.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*services.Assessment, 0, len(s.assessments))
	for _, a := range s.assessments {
		cp := *a
		cp.Responses = append([]*services.Response(nil), s.responses[a.ID]...)
		out = append(out, &cp)
	}
	sortByAge(out)
	return out, nil
}

func (s *memoryStore) ListCompletedAssessments(services.RecalcFilter) ([]*services.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*services.Assessment
	for _, a := range s.assessments {
		if a.CompletedAt == nil {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sortByAge(out)
	return out, nil
}

func (s *memoryStore) Close() error { return nil }

func sortByAge(as []*services.Assessment) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].CreatedAt.Equal(as[j].CreatedAt) {
			return as[i].ID < as[j].ID
		}
		return as[i].CreatedAt.Before(as[j].CreatedAt)
	})
}
