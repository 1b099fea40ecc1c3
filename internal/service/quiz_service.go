package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/config"
	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/repository"
)

var (
	// ErrQuizNotFound means no quiz matches the given id or access code.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizInactive refuses candidate logins on a deactivated quiz.
	ErrQuizInactive = errors.New("quiz is not active")
	// ErrNoQuestions means the quiz's question list resolves to nothing.
	ErrNoQuestions = errors.New("quiz has no questions")
)

// QuizService manages quizzes and their Redis payload cache. Candidate
// logins read through the cache so the portal never hits Postgres on the
// hot path.
type QuizService struct {
	quizzes   *repository.QuizRepository
	questions *repository.QuestionRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizzes *repository.QuizRepository, questions *repository.QuestionRepository, rdb *redis.Client, log zerolog.Logger) *QuizService {
	return &QuizService{
		quizzes:   quizzes,
		questions: questions,
		rdb:       rdb,
		log:       log.With().Str("component", "quiz_service").Logger(),
	}
}

// Create inserts a quiz after checking its question list resolves.
func (s *QuizService) Create(ctx context.Context, req *model.CreateQuizRequest) (*model.Quiz, error) {
	resolved, err := s.questions.ListByIDs(ctx, req.QuestionIDs)
	if err != nil {
		return nil, err
	}
	if len(resolved) != len(req.QuestionIDs) {
		return nil, ErrNoQuestions
	}

	quiz := &model.Quiz{
		Name:                  req.Name,
		Description:           req.Description,
		QuestionIDs:           req.QuestionIDs,
		AccessCode:            NormalizeAccessCode(req.AccessCode),
		Status:                model.QuizStatusActive,
		SecondsPerQuestion:    req.SecondsPerQuestion,
		HasClassificationGame: req.HasClassificationGame,
	}
	if quiz.AccessCode == "" {
		quiz.AccessCode = GenerateAccessCode()
	}
	if quiz.SecondsPerQuestion == 0 {
		quiz.SecondsPerQuestion = model.DefaultSecondsPerQuestion
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}
	if err := s.WarmCache(ctx, quiz.ID); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quiz.ID.String()).Msg("cache warm failed after create")
	}
	return quiz, nil
}

// GetByID retrieves one quiz.
func (s *QuizService) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuizNotFound
	}
	return quiz, err
}

// GetActiveByAccessCode resolves a candidate-facing quiz code. Inactive
// quizzes are invisible to the portal.
func (s *QuizService) GetActiveByAccessCode(ctx context.Context, code string) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetByAccessCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	if quiz.Status != model.QuizStatusActive {
		return nil, ErrQuizInactive
	}
	return quiz, nil
}

// List retrieves all quizzes.
func (s *QuizService) List(ctx context.Context) ([]model.Quiz, error) {
	return s.quizzes.List(ctx)
}

// Update applies a partial update and refreshes the cache.
func (s *QuizService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		quiz.Name = req.Name
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if len(req.QuestionIDs) > 0 {
		resolved, err := s.questions.ListByIDs(ctx, req.QuestionIDs)
		if err != nil {
			return nil, err
		}
		if len(resolved) != len(req.QuestionIDs) {
			return nil, ErrNoQuestions
		}
		quiz.QuestionIDs = req.QuestionIDs
	}
	if req.Status != "" {
		quiz.Status = req.Status
	}
	if req.SecondsPerQuestion != 0 {
		quiz.SecondsPerQuestion = req.SecondsPerQuestion
	}
	if req.HasClassificationGame != nil {
		quiz.HasClassificationGame = *req.HasClassificationGame
	}

	if err := s.quizzes.Update(ctx, quiz); err != nil {
		return nil, err
	}
	if err := s.WarmCache(ctx, quiz.ID); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quiz.ID.String()).Msg("cache warm failed after update")
	}
	return quiz, nil
}

// Delete removes a quiz and drops its cache entries.
func (s *QuizService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.quizzes.Delete(ctx, id); err != nil {
		return err
	}
	s.rdb.Del(ctx,
		config.CacheKey.QuizPayloadKey(id.String()),
		config.CacheKey.QuizAnswerKey(id.String()))
	return nil
}

// ResolveQuestions returns the quiz's ordered question list with correct
// answers, for the engine. Reads through the answer cache.
func (s *QuizService) ResolveQuestions(ctx context.Context, quiz *model.Quiz) ([]model.Question, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.QuizAnswerKey(quiz.ID.String())).Result()
	if err == nil {
		var questions []model.Question
		if err := json.Unmarshal([]byte(raw), &questions); err == nil && len(questions) > 0 {
			return questions, nil
		}
	} else if err != redis.Nil {
		s.log.Warn().Err(err).Msg("answer cache read failed, falling back to database")
	}

	questions, err := s.questions.ListByIDs(ctx, quiz.QuestionIDs)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}

// WarmCache rebuilds the candidate payload and answer cache for one quiz.
func (s *QuizService) WarmCache(ctx context.Context, quizID uuid.UUID) error {
	quiz, err := s.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	questions, err := s.questions.ListByIDs(ctx, quiz.QuestionIDs)
	if err != nil {
		return err
	}

	payload := model.QuizPayload{
		QuizID:                quiz.ID,
		Name:                  quiz.Name,
		HasClassificationGame: quiz.HasClassificationGame,
		Questions:             make([]model.QuestionForCandidate, 0, len(questions)),
	}
	for _, q := range questions {
		payload.Questions = append(payload.Questions, model.QuestionForCandidate{
			ID:        q.ID,
			Prompt:    q.Prompt,
			Choices:   q.Choices,
			TimeLimit: q.EffectiveTimeLimit(quiz.SecondsPerQuestion),
		})
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	answersJSON, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.QuizPayloadKey(quiz.ID.String()), payloadJSON, 0)
	pipe.Set(ctx, config.CacheKey.QuizAnswerKey(quiz.ID.String()), answersJSON, 0)
	_, err = pipe.Exec(ctx)
	return err
}

// PrewarmAllCaches warms every active quiz at startup.
func (s *QuizService) PrewarmAllCaches(ctx context.Context) {
	quizzes, err := s.quizzes.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("prewarm: listing quizzes failed")
		return
	}
	warmed := 0
	for _, q := range quizzes {
		if q.Status != model.QuizStatusActive {
			continue
		}
		if err := s.WarmCache(ctx, q.ID); err != nil {
			s.log.Warn().Err(err).Str("quiz_id", q.ID.String()).Msg("prewarm failed for quiz")
			continue
		}
		warmed++
	}
	s.log.Info().Int("count", warmed).Msg("quiz caches prewarmed")
}
