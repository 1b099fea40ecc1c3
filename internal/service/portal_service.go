package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/store"
)

var (
	// ErrTestAlreadyDone refuses a login for a quiz the candidate already
	// completed. One attempt per candidate per quiz.
	ErrTestAlreadyDone = errors.New("test already completed")
	// ErrTestCancelled refuses a login for a quiz where the candidate's
	// attempt was cancelled for cause.
	ErrTestCancelled = errors.New("test was cancelled")
	// ErrSessionNotFound means no session record matches.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionFinalized refuses attaching a stream to a finished attempt.
	ErrSessionFinalized = errors.New("session already finalized")
	// ErrQuizUnresolvable means a session references a quiz that no longer
	// exists or lost its questions. The stale session is discarded.
	ErrQuizUnresolvable = errors.New("session quiz no longer resolvable")
)

// LoginResult is what the portal returns to a candidate entering codes.
type LoginResult struct {
	Session *model.TestSession `json:"session"`
	Quiz    *model.QuizPayload `json:"quiz"`
	Resumed bool               `json:"resumed"`
}

// PortalService implements the candidate-facing login and session
// resolution flow.
type PortalService struct {
	quizzes    *QuizService
	candidates *CandidateService
	sessions   *store.SessionStore
	log        zerolog.Logger
}

// NewPortalService creates a new PortalService.
func NewPortalService(quizzes *QuizService, candidates *CandidateService, sessions *store.SessionStore, log zerolog.Logger) *PortalService {
	return &PortalService{
		quizzes:    quizzes,
		candidates: candidates,
		sessions:   sessions,
		log:        log.With().Str("component", "portal_service").Logger(),
	}
}

// Login validates both access codes and either opens a fresh attempt or
// resumes the in-flight one. Completed and cancelled attempts are final:
// the same candidate can never retake the same quiz.
func (s *PortalService) Login(ctx context.Context, req *model.LoginRequest) (*LoginResult, error) {
	quiz, err := s.quizzes.GetActiveByAccessCode(ctx, NormalizeAccessCode(req.QuizCode))
	if err != nil {
		return nil, err
	}
	if _, err := s.candidates.GetByAccessCode(ctx, NormalizeAccessCode(req.CandidateCode)); err != nil {
		return nil, err
	}

	existing, err := s.sessions.FindByQuizAndEmail(ctx, quiz.ID, req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case model.SessionStatusCompleted:
			return nil, ErrTestAlreadyDone
		case model.SessionStatusCancelled:
			return nil, ErrTestCancelled
		}
		s.log.Info().
			Str("session_id", existing.ID.String()).
			Str("email", req.Email).
			Msg("resuming attempt")
		payload, err := s.payload(ctx, quiz)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Session: existing, Quiz: payload, Resumed: true}, nil
	}

	session := &model.TestSession{
		ID:        uuid.New(),
		QuizID:    quiz.ID,
		Candidate: req.Info(),
		Status:    model.SessionStatusInProgress,
		StartedAt: time.Now().UTC(),
		Answers:   []int{},
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("quiz_id", quiz.ID.String()).
		Str("email", req.Email).
		Msg("attempt opened")

	payload, err := s.payload(ctx, quiz)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: session, Quiz: payload, Resumed: false}, nil
}

// AttemptContext is everything the engine needs to run one attempt.
type AttemptContext struct {
	Session   *model.TestSession
	Quiz      *model.Quiz
	Questions []model.Question
}

// ResolveAttempt loads a session and its quiz material for the attempt
// stream. A session whose quiz no longer resolves is discarded so the
// candidate can be told to contact the organizer rather than hang.
func (s *PortalService) ResolveAttempt(ctx context.Context, sessionID uuid.UUID) (*AttemptContext, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, ErrSessionFinalized
	}

	quiz, err := s.quizzes.GetByID(ctx, session.QuizID)
	if errors.Is(err, ErrQuizNotFound) {
		s.discardStale(ctx, session)
		return nil, ErrQuizUnresolvable
	}
	if err != nil {
		return nil, err
	}

	questions, err := s.quizzes.ResolveQuestions(ctx, quiz)
	if errors.Is(err, ErrNoQuestions) {
		s.discardStale(ctx, session)
		return nil, ErrQuizUnresolvable
	}
	if err != nil {
		return nil, err
	}

	return &AttemptContext{Session: session, Quiz: quiz, Questions: questions}, nil
}

// GetSession returns one session record for the portal's state poll.
func (s *PortalService) GetSession(ctx context.Context, sessionID uuid.UUID) (*model.TestSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func (s *PortalService) discardStale(ctx context.Context, session *model.TestSession) {
	if err := s.sessions.Discard(ctx, session); err != nil {
		s.log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to discard stale session")
		return
	}
	s.log.Warn().Str("session_id", session.ID.String()).Msg("discarded session with unresolvable quiz")
}

func (s *PortalService) payload(ctx context.Context, quiz *model.Quiz) (*model.QuizPayload, error) {
	questions, err := s.quizzes.ResolveQuestions(ctx, quiz)
	if err != nil {
		return nil, err
	}
	payload := &model.QuizPayload{
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
	return payload, nil
}
