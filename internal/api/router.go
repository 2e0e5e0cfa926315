package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/truevow/truevow/internal/catalog"
	"github.com/truevow/truevow/internal/middleware"
	"github.com/truevow/truevow/internal/services"
)

// resultTokenTTL is generous: couples often come back to a report weeks
// after finishing the questionnaire.
const resultTokenTTL = 90 * 24 * time.Hour

type Router struct {
	store       Store
	catalog     *catalog.Catalog
	assessments *services.AssessmentService
	recalc      *services.RecalcService
	promo       *services.PromoCodeValidator
	auth        *middleware.Auth
	logger      *zap.Logger

	commit    string
	buildTime string
}

type RouterConfig struct {
	Store    Store
	Catalog  *catalog.Catalog
	Profiles *services.ProfileSet
	Promo    *services.PromoCodeValidator
	Auth     *middleware.Auth
	Logger   *zap.Logger

	Commit    string
	BuildTime string
}

func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		store:       cfg.Store,
		catalog:     cfg.Catalog,
		assessments: services.NewAssessmentService(cfg.Store, cfg.Catalog, cfg.Profiles),
		recalc:      services.NewRecalcService(cfg.Store, cfg.Catalog, cfg.Profiles, logger),
		promo:       cfg.Promo,
		auth:        cfg.Auth,
		logger:      logger,
		commit:      cfg.Commit,
		buildTime:   cfg.BuildTime,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/assessments", rt.handleCreateAssessment)   // POST
	mux.HandleFunc("/api/assessments/", rt.handleAssessmentScoped)  // POST answers/complete/couple, GET result
	mux.HandleFunc("/api/couples/", rt.handleCoupleScoped)          // GET {id}/report
	mux.HandleFunc("/api/promo/validate", rt.handleValidatePromo)   // POST
	mux.HandleFunc("/api/catalog", rt.handleCatalog)                // GET
	mux.Handle("/api/admin/recalculate", rt.auth.RequireAdmin(http.HandlerFunc(rt.handleRecalculate)))
	mux.Handle("/api/admin/export", rt.auth.RequireAdmin(http.HandlerFunc(rt.handleExport)))
	mux.HandleFunc("/health", rt.handleHealth)
	mux.HandleFunc("/version", rt.handleVersion)
}

// POST /api/assessments
// { email, first_name?, gender?, spouse_email?, couple_id? }
func (rt *Router) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		services.Demographics
		CoupleID string `json:"couple_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, services.NewInvalidError("invalid request body"))
		return
	}
	a, err := rt.assessments.Start(req.Demographics, req.CoupleID)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	token, err := rt.auth.SignResultToken(a.ID, a.Demographics.Email, resultTokenTTL)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.writeJSON(w, http.StatusCreated, map[string]any{
		"assessment_id": a.ID,
		"couple_id":     a.CoupleID,
		"result_token":  token,
	})
}

// Scoped routes under /api/assessments/{id}/...
func (rt *Router) handleAssessmentScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/assessments/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]
	switch {
	case parts[1] == "answers" && r.Method == http.MethodPost:
		rt.handleSubmitAnswers(w, r, id)
	case parts[1] == "complete" && r.Method == http.MethodPost:
		rt.handleComplete(w, r, id)
	case parts[1] == "couple" && r.Method == http.MethodPost:
		rt.handleJoinCouple(w, r, id)
	case parts[1] == "result" && r.Method == http.MethodGet:
		rt.handleResult(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

// POST /api/assessments/{id}/answers
// { answers: [{question_id | question_key, selected_option}] }
func (rt *Router) handleSubmitAnswers(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Answers []services.AnswerInput `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, services.NewInvalidError("invalid request body"))
		return
	}
	n, err := rt.assessments.SubmitAnswers(id, req.Answers)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "accepted": n})
}

// POST /api/assessments/{id}/complete
func (rt *Router) handleComplete(w http.ResponseWriter, r *http.Request, id string) {
	a, err := rt.assessments.Complete(id)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.logger.Info("assessment completed",
		zap.String("assessment_id", a.ID),
		zap.Float64("overall", a.Result.OverallPercentage),
		zap.String("profile_id", a.ProfileID))
	rt.writeJSON(w, http.StatusOK, assessmentView(a))
}

// POST /api/assessments/{id}/couple
// { couple_id? } — empty mints a fresh couple id to share with the spouse.
func (rt *Router) handleJoinCouple(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		CoupleID string `json:"couple_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, services.NewInvalidError("invalid request body"))
		return
	}
	a, err := rt.assessments.JoinCouple(id, req.CoupleID)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, map[string]any{"assessment_id": a.ID, "couple_id": a.CoupleID})
}

// GET /api/assessments/{id}/result — gated by the result token issued at
// creation time. A token for a different assessment is refused.
func (rt *Router) handleResult(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := middleware.ResultClaimsFromContext(r.Context())
	if !ok {
		rt.writeError(w, services.NewUnauthorizedError("result token required"))
		return
	}
	if claims.AssessmentID != id {
		rt.writeError(w, services.NewForbiddenError("token does not grant access to this assessment"))
		return
	}
	a, match, err := rt.assessments.Result(id)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	out := assessmentView(a)
	out["profile"] = match.Primary
	if match.Gender != nil {
		out["gender_profile"] = match.Gender
	}
	rt.writeJSON(w, http.StatusOK, out)
}

// GET /api/couples/{id}/report
func (rt *Router) handleCoupleScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/couples/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "report" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	report, err := rt.assessments.CoupleReport(parts[0])
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, report)
}

// POST /api/promo/validate — { code }
func (rt *Router) handleValidatePromo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rt.writeError(w, services.NewInvalidError("invalid request body"))
		return
	}
	d, err := rt.promo.Validate(req.Code)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, d)
}

// GET /api/catalog — the questions the frontend renders, in catalog order.
func (rt *Router) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type outQuestion struct {
		ID         int      `json:"id"`
		Section    string   `json:"section"`
		Subsection string   `json:"subsection,omitempty"`
		Type       string   `json:"type"`
		Text       string   `json:"text"`
		Options    []string `json:"options,omitempty"`
	}
	qs := rt.catalog.Questions()
	out := make([]outQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, outQuestion{
			ID:         q.ID,
			Section:    q.Section,
			Subsection: q.Subsection,
			Type:       string(q.Type),
			Text:       q.Text,
			Options:    q.Options,
		})
	}
	rt.writeJSON(w, http.StatusOK, map[string]any{
		"version":   rt.catalog.Version(),
		"sections":  rt.catalog.Sections(),
		"questions": out,
	})
}

// POST /api/admin/recalculate — { emails?, from?, to? }
func (rt *Router) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var filter services.RecalcFilter
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
			rt.writeError(w, services.NewInvalidError("invalid request body"))
			return
		}
	}
	report, err := rt.recalc.Run(filter)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, report)
}

// GET /api/admin/export?format=responses|scores
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "responses"
	}
	assessments, err := rt.store.ListAssessments()
	if err != nil {
		rt.writeError(w, err)
		return
	}
	var b []byte
	switch format {
	case "responses":
		b, err = services.ExportResponsesCSV(rt.catalog, assessments)
	case "scores":
		b, err = services.ExportScoresCSV(rt.catalog, assessments)
	default:
		rt.writeError(w, services.NewInvalidError("unsupported format"))
		return
	}
	if err != nil {
		rt.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+format+".csv")
	_, _ = w.Write(b)
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	rt.writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"name":            "TrueVow API",
		"catalog_version": rt.catalog.Version(),
		"commit":          rt.commit,
		"build_time":      rt.buildTime,
	})
}

func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	rt.writeJSON(w, http.StatusOK, map[string]any{
		"commit":     rt.commit,
		"build_time": rt.buildTime,
	})
}

func assessmentView(a *services.Assessment) map[string]any {
	out := map[string]any{
		"assessment_id":   a.ID,
		"email":           a.Demographics.Email,
		"couple_id":       a.CoupleID,
		"catalog_version": a.CatalogVersion,
		"result":          a.Result,
		"profile_id":      a.ProfileID,
	}
	if a.GenderProfileID != "" {
		out["gender_profile_id"] = a.GenderProfileID
	}
	if a.CompletedAt != nil {
		out["completed_at"] = a.CompletedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func (rt *Router) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	code, message, status := "internal", "internal error", http.StatusInternalServerError
	if se, ok := services.AsServiceError(err); ok {
		code, message = string(se.Code), se.Message
		status = httpStatus(se.Code)
	} else {
		rt.logger.Error("request failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func httpStatus(code services.ErrorCode) int {
	switch code {
	case services.ErrorInvalid, services.ErrorInvalidResponse:
		return http.StatusBadRequest
	case services.ErrorInsufficientResponses:
		return http.StatusUnprocessableEntity
	case services.ErrorCouplePending:
		return http.StatusConflict
	case services.ErrorForbidden:
		return http.StatusForbidden
	case services.ErrorNotFound:
		return http.StatusNotFound
	case services.ErrorConflict:
		return http.StatusConflict
	case services.ErrorUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
