package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionChoiceCount is fixed: every question carries exactly three choices.
const QuestionChoiceCount = 3

// Question represents a single multiple-choice question. CorrectAnswer is
// the zero-based index into Choices. TimeLimit of 0 means "use the quiz
// default".
type Question struct {
	ID            uuid.UUID `json:"id"`
	Prompt        string    `json:"prompt"`
	Choices       []string  `json:"choices"`
	CorrectAnswer int       `json:"correct_answer"`
	Category      string    `json:"category,omitempty"`
	TimeLimit     int       `json:"time_limit,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// EffectiveTimeLimit returns the question's own budget or the given quiz
// default when no override is set.
func (q *Question) EffectiveTimeLimit(quizDefault int) int {
	if q.TimeLimit > 0 {
		return q.TimeLimit
	}
	if quizDefault > 0 {
		return quizDefault
	}
	return DefaultSecondsPerQuestion
}

// CreateQuestionRequest is the payload for creating a question.
type CreateQuestionRequest struct {
	Prompt        string   `json:"prompt" binding:"required,min=1,max=2000"`
	Choices       []string `json:"choices" binding:"required,len=3,dive,required,max=500"`
	CorrectAnswer int      `json:"correct_answer" binding:"min=0,max=2"`
	Category      string   `json:"category" binding:"max=100"`
	TimeLimit     int      `json:"time_limit" binding:"omitempty,min=5,max=300"`
}

// UpdateQuestionRequest is the payload for updating a question.
type UpdateQuestionRequest struct {
	Prompt        string   `json:"prompt" binding:"omitempty,min=1,max=2000"`
	Choices       []string `json:"choices" binding:"omitempty,len=3,dive,required,max=500"`
	CorrectAnswer *int     `json:"correct_answer" binding:"omitempty,min=0,max=2"`
	Category      *string  `json:"category" binding:"omitempty,max=100"`
	TimeLimit     *int     `json:"time_limit" binding:"omitempty,min=0,max=300"`
}
