package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizStatus enumerates the possible states of a quiz.
type QuizStatus string

const (
	QuizStatusActive   QuizStatus = "active"
	QuizStatusInactive QuizStatus = "inactive"
)

// DefaultSecondsPerQuestion is used when a quiz does not override it.
const DefaultSecondsPerQuestion = 60

// MaxSecondsPerQuestion caps per-question time budgets.
const MaxSecondsPerQuestion = 300

// Quiz represents an assessment questionnaire. The question list is
// ordered; a session walks it front to back.
type Quiz struct {
	ID                    uuid.UUID   `json:"id"`
	Name                  string      `json:"name"`
	Description           string      `json:"description"`
	QuestionIDs           []uuid.UUID `json:"question_ids"`
	AccessCode            string      `json:"access_code,omitempty"`
	Status                QuizStatus  `json:"status"`
	SecondsPerQuestion    int         `json:"seconds_per_question"`
	HasClassificationGame bool        `json:"has_classification_game"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// CreateQuizRequest is the payload for creating a new quiz.
type CreateQuizRequest struct {
	Name                  string      `json:"name" binding:"required,min=3,max=255"`
	Description           string      `json:"description" binding:"max=2000"`
	QuestionIDs           []uuid.UUID `json:"question_ids" binding:"required,min=1"`
	AccessCode            string      `json:"access_code" binding:"omitempty,min=4,max=20"`
	SecondsPerQuestion    int         `json:"seconds_per_question" binding:"omitempty,min=10,max=300"`
	HasClassificationGame bool        `json:"has_classification_game"`
}

// UpdateQuizRequest is the payload for updating an existing quiz.
type UpdateQuizRequest struct {
	Name                  string      `json:"name" binding:"omitempty,min=3,max=255"`
	Description           *string     `json:"description" binding:"omitempty,max=2000"`
	QuestionIDs           []uuid.UUID `json:"question_ids" binding:"omitempty,min=1"`
	Status                QuizStatus  `json:"status" binding:"omitempty,oneof=active inactive"`
	SecondsPerQuestion    int         `json:"seconds_per_question" binding:"omitempty,min=10,max=300"`
	HasClassificationGame *bool       `json:"has_classification_game" binding:"omitempty"`
}

// QuizPayload is the cached, candidate-facing view of a quiz. It never
// carries correct answers.
type QuizPayload struct {
	QuizID                uuid.UUID              `json:"quiz_id"`
	Name                  string                 `json:"name"`
	HasClassificationGame bool                   `json:"has_classification_game"`
	Questions             []QuestionForCandidate `json:"questions"`
}

// QuestionForCandidate is a question stripped of its correct answer.
type QuestionForCandidate struct {
	ID        uuid.UUID `json:"id"`
	Prompt    string    `json:"prompt"`
	Choices   []string  `json:"choices"`
	TimeLimit int       `json:"time_limit"`
}
