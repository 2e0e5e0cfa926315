package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/truevow/truevow/internal/api"
	"github.com/truevow/truevow/internal/services"
)

// SQLiteStore persists assessments, responses, and couple reports in a single
// SQLite file. Score results and reports are stored as JSON documents: they
// are written wholesale and read wholesale, never queried field by field.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ api.Store = (*SQLiteStore)(nil)

// New opens (creating if needed) the database at path and applies migrations.
func New(path, migrationsDir string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := RunMigrations(conn, migrationsDir); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &SQLiteStore{db: conn, logger: logger}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) InsertAssessment(a *services.Assessment) error {
	resultJSON, err := marshalResult(a.Result)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO assessments
		(id, email, first_name, gender, spouse_email, couple_id, catalog_version,
		 profile_id, gender_profile_id, result_json, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Demographics.Email, a.Demographics.FirstName, a.Demographics.Gender,
		a.Demographics.SpouseEmail, a.CoupleID, a.CatalogVersion,
		a.ProfileID, a.GenderProfileID, resultJSON, a.CreatedAt, a.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert assessment %s: %w", a.ID, err)
	}
	return nil
}

func (s *SQLiteStore) UpdateAssessment(a *services.Assessment) error {
	resultJSON, err := marshalResult(a.Result)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE assessments SET
		email = ?, first_name = ?, gender = ?, spouse_email = ?, couple_id = ?,
		catalog_version = ?, profile_id = ?, gender_profile_id = ?,
		result_json = ?, completed_at = ?
		WHERE id = ?`,
		a.Demographics.Email, a.Demographics.FirstName, a.Demographics.Gender,
		a.Demographics.SpouseEmail, a.CoupleID, a.CatalogVersion,
		a.ProfileID, a.GenderProfileID, resultJSON, a.CompletedAt, a.ID)
	if err != nil {
		return fmt.Errorf("update assessment %s: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("assessment %s not found", a.ID)
	}
	return nil
}

const assessmentColumns = `id, email, first_name, gender, spouse_email, couple_id,
	catalog_version, profile_id, gender_profile_id, result_json, created_at, completed_at`

func (s *SQLiteStore) GetAssessment(id string) (*services.Assessment, error) {
	row := s.db.QueryRow(`SELECT `+assessmentColumns+` FROM assessments WHERE id = ?`, id)
	a, err := s.scanAssessment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (s *SQLiteStore) ListAssessmentsByCouple(coupleID string) ([]*services.Assessment, error) {
	if coupleID == "" {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT `+assessmentColumns+` FROM assessments
		WHERE couple_id = ? ORDER BY created_at, id`, coupleID)
	if err != nil {
		return nil, fmt.Errorf("list couple %s: %w", coupleID, err)
	}
	return s.collectAssessments(rows)
}

func (s *SQLiteStore) ListAssessments() ([]*services.Assessment, error) {
	rows, err := s.db.Query(`SELECT ` + assessmentColumns + ` FROM assessments ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	out, err := s.collectAssessments(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range out {
		rs, err := s.ListResponses(a.ID)
		if err != nil {
			return nil, err
		}
		a.Responses = rs
	}
	return out, nil
}

// ListCompletedAssessments returns every completed record; finer-grained
// filtering (emails, date windows) happens in the recalculation driver.
func (s *SQLiteStore) ListCompletedAssessments(services.RecalcFilter) ([]*services.Assessment, error) {
	rows, err := s.db.Query(`SELECT ` + assessmentColumns + ` FROM assessments
		WHERE completed_at IS NOT NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list completed assessments: %w", err)
	}
	return s.collectAssessments(rows)
}

func (s *SQLiteStore) AddResponses(assessmentID string, rs []*services.Response) error {
	if len(rs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO responses (assessment_id, question_id, selected_option, value)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, r := range rs {
		if _, err := stmt.Exec(assessmentID, r.QuestionID, r.SelectedOption, r.Value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert response for %s: %w", assessmentID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListResponses(assessmentID string) ([]*services.Response, error) {
	rows, err := s.db.Query(`SELECT question_id, selected_option, value FROM responses
		WHERE assessment_id = ? ORDER BY id`, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("list responses for %s: %w", assessmentID, err)
	}
	defer rows.Close()
	var out []*services.Response
	for rows.Next() {
		r := &services.Response{}
		if err := rows.Scan(&r.QuestionID, &r.SelectedOption, &r.Value); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveCoupleReport(r *services.CoupleReport) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode couple report %s: %w", r.CoupleID, err)
	}
	_, err = s.db.Exec(`INSERT INTO couple_reports (couple_id, report_json, generated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(couple_id) DO UPDATE SET report_json = excluded.report_json,
			generated_at = excluded.generated_at`,
		r.CoupleID, string(b), r.GeneratedAt)
	if err != nil {
		return fmt.Errorf("save couple report %s: %w", r.CoupleID, err)
	}
	return nil
}

func (s *SQLiteStore) GetCoupleReport(coupleID string) (*services.CoupleReport, error) {
	var raw string
	err := s.db.QueryRow(`SELECT report_json FROM couple_reports WHERE couple_id = ?`, coupleID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get couple report %s: %w", coupleID, err)
	}
	var report services.CoupleReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		// A corrupted document is treated as absent so the report regenerates.
		s.logger.Warn("discarding undecodable couple report",
			zap.String("couple_id", coupleID), zap.Error(err))
		return nil, nil
	}
	return &report, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanAssessment(row rowScanner) (*services.Assessment, error) {
	a := &services.Assessment{}
	var resultJSON sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(&a.ID, &a.Demographics.Email, &a.Demographics.FirstName,
		&a.Demographics.Gender, &a.Demographics.SpouseEmail, &a.CoupleID,
		&a.CatalogVersion, &a.ProfileID, &a.GenderProfileID,
		&resultJSON, &a.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	if resultJSON.Valid && resultJSON.String != "" {
		var result services.ScoreResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			// Leave the result empty; the recalculation driver will rebuild it.
			s.logger.Warn("discarding undecodable score result",
				zap.String("assessment_id", a.ID), zap.Error(err))
		} else {
			a.Result = &result
		}
	}
	return a, nil
}

func (s *SQLiteStore) collectAssessments(rows *sql.Rows) ([]*services.Assessment, error) {
	defer rows.Close()
	var out []*services.Assessment
	for rows.Next() {
		a, err := s.scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func marshalResult(r *services.ScoreResult) (any, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode score result: %w", err)
	}
	return string(b), nil
}
