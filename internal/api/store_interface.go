package api

import "github.com/truevow/truevow/internal/services"

// Store is the full persistence surface the HTTP layer wires together. It is
// a superset of the narrower per-service interfaces; the compile-time checks
// below keep them aligned.
type Store interface {
	InsertAssessment(a *services.Assessment) error
	GetAssessment(id string) (*services.Assessment, error)
	UpdateAssessment(a *services.Assessment) error

	AddResponses(assessmentID string, rs []*services.Response) error
	ListResponses(assessmentID string) ([]*services.Response, error)

	ListAssessmentsByCouple(coupleID string) ([]*services.Assessment, error)
	SaveCoupleReport(r *services.CoupleReport) error
	GetCoupleReport(coupleID string) (*services.CoupleReport, error)

	// ListAssessments returns every assessment with its responses attached,
	// for admin exports.
	ListAssessments() ([]*services.Assessment, error)
	ListCompletedAssessments(f services.RecalcFilter) ([]*services.Assessment, error)

	Close() error
}

var (
	_ Store                    = (*memoryStore)(nil)
	_ services.AssessmentStore = Store(nil)
	_ services.RecalcStore     = Store(nil)
)
