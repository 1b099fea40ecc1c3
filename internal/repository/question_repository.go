package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexpaac/testrh-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (prompt, choices, correct_answer, category, time_limit)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		q.Prompt, q.Choices, q.CorrectAnswer, q.Category, q.TimeLimit,
	).Scan(&q.ID, &q.CreatedAt)
}

// BulkCreate inserts a batch of questions in one round trip. Used by the
// CSV import.
func (r *QuestionRepository) BulkCreate(ctx context.Context, questions []model.Question) ([]uuid.UUID, error) {
	// CopyFrom cannot return the generated ids, so pre-assign them.
	rows := make([][]interface{}, 0, len(questions))
	ids := make([]uuid.UUID, 0, len(questions))
	for i := range questions {
		questions[i].ID = uuid.New()
		ids = append(ids, questions[i].ID)
		rows = append(rows, []interface{}{
			questions[i].ID, questions[i].Prompt, questions[i].Choices,
			questions[i].CorrectAnswer, questions[i].Category, questions[i].TimeLimit,
		})
	}

	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"questions"},
		[]string{"id", "prompt", "choices", "correct_answer", "category", "time_limit"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetByID retrieves a question by its id.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	var q model.Question
	err := r.pool.QueryRow(ctx,
		`SELECT id, prompt, choices, correct_answer, category, time_limit, created_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Prompt, &q.Choices, &q.CorrectAnswer, &q.Category, &q.TimeLimit, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListByIDs retrieves questions preserving the order of the given ids.
// This order is the quiz's question order.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.prompt, q.choices, q.correct_answer, q.category, q.time_limit, q.created_at
		 FROM questions q
		 JOIN unnest($1::uuid[]) WITH ORDINALITY AS ord(id, pos) ON ord.id = q.id
		 ORDER BY ord.pos`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Prompt, &q.Choices, &q.CorrectAnswer, &q.Category, &q.TimeLimit, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// List retrieves all questions, newest first.
func (r *QuestionRepository) List(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, prompt, choices, correct_answer, category, time_limit, created_at
		 FROM questions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Prompt, &q.Choices, &q.CorrectAnswer, &q.Category, &q.TimeLimit, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Update rewrites a question row.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET prompt = $2, choices = $3, correct_answer = $4, category = $5, time_limit = $6
		 WHERE id = $1`,
		q.ID, q.Prompt, q.Choices, q.CorrectAnswer, q.Category, q.TimeLimit,
	)
	return err
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}
