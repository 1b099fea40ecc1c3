package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/repository"
)

// ErrQuestionNotFound means no question matches the given id.
var ErrQuestionNotFound = errors.New("question not found")

// QuestionService manages the question bank.
type QuestionService struct {
	questions *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questions: questions}
}

// Create inserts a question.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		Prompt:        req.Prompt,
		Choices:       req.Choices,
		CorrectAnswer: req.CorrectAnswer,
		Category:      req.Category,
		TimeLimit:     req.TimeLimit,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID retrieves one question.
func (s *QuestionService) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuestionNotFound
	}
	return q, err
}

// List retrieves the whole question bank.
func (s *QuestionService) List(ctx context.Context) ([]model.Question, error) {
	return s.questions.List(ctx)
}

// Update applies a partial update.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Prompt != "" {
		q.Prompt = req.Prompt
	}
	if len(req.Choices) > 0 {
		q.Choices = req.Choices
	}
	if req.CorrectAnswer != nil {
		q.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Category != nil {
		q.Category = *req.Category
	}
	if req.TimeLimit != nil {
		q.TimeLimit = *req.TimeLimit
	}

	if err := s.questions.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes a question.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.questions.Delete(ctx, id)
}
