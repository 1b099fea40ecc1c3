package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/repository"
)

// SessionDetail is one attempt with its full integrity log.
type SessionDetail struct {
	Session          *model.TestSession      `json:"session"`
	CheatingAttempts []model.CheatingAttempt `json:"cheating_attempts"`
}

// ReportService serves the back-office result views from the durable
// Postgres copy.
type ReportService struct {
	sessions *repository.SessionRepository
}

// NewReportService creates a new ReportService.
func NewReportService(sessions *repository.SessionRepository) *ReportService {
	return &ReportService{sessions: sessions}
}

// ListSessions returns a filtered page of attempts plus the total count.
func (s *ReportService) ListSessions(ctx context.Context, f repository.SessionFilter, page, perPage int) ([]*model.TestSession, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.sessions.ListPaginated(ctx, f, page, perPage)
}

// GetSessionDetail returns one attempt with its integrity log.
func (s *ReportService) GetSessionDetail(ctx context.Context, id uuid.UUID) (*SessionDetail, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	attempts, err := s.sessions.ListCheatingAttempts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{Session: session, CheatingAttempts: attempts}, nil
}

// ExportCSV streams every attempt matching the filter as CSV.
func (s *ReportService) ExportCSV(ctx context.Context, w io.Writer, f repository.SessionFilter) error {
	const exportPageSize = 500

	cw := csv.NewWriter(w)
	header := []string{
		"session_id", "prenom", "nom", "email", "manager", "pole", "niveau", "role",
		"statut", "commence_le", "termine_le", "duree_secondes", "score", "score_classement",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for page := 1; ; page++ {
		sessions, _, err := s.sessions.ListPaginated(ctx, f, page, exportPageSize)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			break
		}
		for _, sess := range sessions {
			if err := cw.Write(exportRow(sess)); err != nil {
				return err
			}
		}
		if len(sessions) < exportPageSize {
			break
		}
	}

	cw.Flush()
	return cw.Error()
}

func exportRow(s *model.TestSession) []string {
	completedAt := ""
	if s.CompletedAt != nil {
		completedAt = s.CompletedAt.UTC().Format("2006-01-02 15:04:05")
	}
	score := ""
	if s.Score != nil {
		score = strconv.Itoa(*s.Score)
	}
	classification := ""
	if s.ClassificationScore != nil {
		classification = strconv.Itoa(*s.ClassificationScore)
	}
	return []string{
		s.ID.String(),
		s.Candidate.FirstName,
		s.Candidate.LastName,
		s.Candidate.Email,
		s.Candidate.Manager,
		s.Candidate.Department,
		string(s.Candidate.Level),
		s.Candidate.Role,
		string(s.Status),
		s.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		completedAt,
		fmt.Sprintf("%d", s.CompletionTime),
		score,
		classification,
	}
}
