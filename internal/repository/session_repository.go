package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexpaac/testrh-backend/internal/model"
)

// SessionRepository handles the durable copy of session records. The hot
// path lives in Redis; the persistence workers feed this table for
// reporting.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// SessionFilter narrows report listings.
type SessionFilter struct {
	QuizID uuid.UUID
	Status model.SessionStatus
	Search string
}

// Upsert writes the full session record, replacing any previous row.
func (r *SessionRepository) Upsert(ctx context.Context, s *model.TestSession) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO test_sessions
		   (id, quiz_id, first_name, last_name, email, manager, department, level, role,
		    status, started_at, completed_at, completion_time, answers, score, classification_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (id) DO UPDATE SET
		   status = EXCLUDED.status,
		   completed_at = EXCLUDED.completed_at,
		   completion_time = EXCLUDED.completion_time,
		   answers = EXCLUDED.answers,
		   score = EXCLUDED.score,
		   classification_score = EXCLUDED.classification_score`,
		s.ID, s.QuizID, s.Candidate.FirstName, s.Candidate.LastName, s.Candidate.Email,
		s.Candidate.Manager, s.Candidate.Department, s.Candidate.Level, s.Candidate.Role,
		s.Status, s.StartedAt, s.CompletedAt, s.CompletionTime, s.Answers, s.Score, s.ClassificationScore,
	)
	return err
}

// UpsertBatch writes a batch of records in one round trip.
func (r *SessionRepository) UpsertBatch(ctx context.Context, sessions []*model.TestSession) error {
	batch := &pgx.Batch{}
	for _, s := range sessions {
		batch.Queue(
			`INSERT INTO test_sessions
			   (id, quiz_id, first_name, last_name, email, manager, department, level, role,
			    status, started_at, completed_at, completion_time, answers, score, classification_score)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			 ON CONFLICT (id) DO UPDATE SET
			   status = EXCLUDED.status,
			   completed_at = EXCLUDED.completed_at,
			   completion_time = EXCLUDED.completion_time,
			   answers = EXCLUDED.answers,
			   score = EXCLUDED.score,
			   classification_score = EXCLUDED.classification_score`,
			s.ID, s.QuizID, s.Candidate.FirstName, s.Candidate.LastName, s.Candidate.Email,
			s.Candidate.Manager, s.Candidate.Department, s.Candidate.Level, s.Candidate.Role,
			s.Status, s.StartedAt, s.CompletedAt, s.CompletionTime, s.Answers, s.Score, s.ClassificationScore,
		)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

const sessionColumns = `id, quiz_id, first_name, last_name, email, manager, department, level, role,
	status, started_at, completed_at, completion_time, answers, score, classification_score`

func scanSession(row interface{ Scan(...any) error }) (*model.TestSession, error) {
	var s model.TestSession
	err := row.Scan(&s.ID, &s.QuizID, &s.Candidate.FirstName, &s.Candidate.LastName,
		&s.Candidate.Email, &s.Candidate.Manager, &s.Candidate.Department,
		&s.Candidate.Level, &s.Candidate.Role, &s.Status, &s.StartedAt,
		&s.CompletedAt, &s.CompletionTime, &s.Answers, &s.Score, &s.ClassificationScore)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID retrieves one durable record.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1`, id))
}

// ListPaginated retrieves records matching the filter, newest first.
func (r *SessionRepository) ListPaginated(ctx context.Context, f SessionFilter, page, perPage int) ([]*model.TestSession, int, error) {
	where, args := buildSessionWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_sessions`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM test_sessions%s ORDER BY started_at DESC LIMIT $%d OFFSET $%d`,
			sessionColumns, where, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []*model.TestSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	return sessions, total, rows.Err()
}

func buildSessionWhere(f SessionFilter) (string, []any) {
	var conds []string
	var args []any

	if f.QuizID != uuid.Nil {
		args = append(args, f.QuizID)
		conds = append(conds, fmt.Sprintf("quiz_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// InsertCheatingAttempts bulk-inserts integrity events via COPY.
func (r *SessionRepository) InsertCheatingAttempts(ctx context.Context, rows [][]interface{}) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"cheating_attempts"},
		[]string{"session_id", "type", "warning", "metadata", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// ListCheatingAttempts retrieves the integrity log of one session in
// chronological order.
func (r *SessionRepository) ListCheatingAttempts(ctx context.Context, sessionID uuid.UUID) ([]model.CheatingAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT type, warning, metadata, recorded_at
		 FROM cheating_attempts WHERE session_id = $1
		 ORDER BY recorded_at`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.CheatingAttempt
	for rows.Next() {
		var a model.CheatingAttempt
		if err := rows.Scan(&a.Type, &a.Warning, &a.Metadata, &a.Timestamp); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
