package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexpaac/testrh-backend/internal/model"
)

// QuizRepository handles quiz data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, name, description, question_ids, access_code, status, seconds_per_question, has_classification_game, created_at, updated_at`

func scanQuiz(row interface{ Scan(...any) error }) (*model.Quiz, error) {
	var q model.Quiz
	err := row.Scan(&q.ID, &q.Name, &q.Description, &q.QuestionIDs, &q.AccessCode,
		&q.Status, &q.SecondsPerQuestion, &q.HasClassificationGame, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Create inserts a new quiz.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (name, description, question_ids, access_code, status, seconds_per_question, has_classification_game)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		q.Name, q.Description, q.QuestionIDs, q.AccessCode, q.Status, q.SecondsPerQuestion, q.HasClassificationGame,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves a quiz by its id.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id))
}

// GetByAccessCode retrieves a quiz by its candidate-facing access code.
func (r *QuizRepository) GetByAccessCode(ctx context.Context, code string) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE access_code = $1`, code))
}

// List retrieves all quizzes, newest first.
func (r *QuizRepository) List(ctx context.Context) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

// Update rewrites a quiz row.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	return r.pool.QueryRow(ctx,
		`UPDATE quizzes
		 SET name = $2, description = $3, question_ids = $4, access_code = $5,
		     status = $6, seconds_per_question = $7, has_classification_game = $8,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		q.ID, q.Name, q.Description, q.QuestionIDs, q.AccessCode,
		q.Status, q.SecondsPerQuestion, q.HasClassificationGame,
	).Scan(&q.UpdatedAt)
}

// Delete removes a quiz.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}
