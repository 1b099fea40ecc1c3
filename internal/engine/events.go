package engine

import (
	"time"

	"github.com/alexpaac/testrh-backend/internal/model"
)

// EventType names a server-to-client event on the attempt stream.
type EventType string

const (
	EventState                EventType = "state"
	EventQuestion             EventType = "question"
	EventTick                 EventType = "tick"
	EventWarning              EventType = "warning"
	EventCancelled            EventType = "cancelled"
	EventPhase                EventType = "phase"
	EventClassificationResult EventType = "classification_result"
	EventCompleted            EventType = "completed"
	EventError                EventType = "error"
	EventPong                 EventType = "pong"
)

// Event is one message pushed to the candidate's attempt stream.
type Event struct {
	Type EventType   `json:"event"`
	Data interface{} `json:"data,omitempty"`
}

// Sink receives events emitted by a runtime. It must not block; the
// transport layer buffers and drops slow consumers.
type Sink func(Event)

// PhaseQuiz and PhaseClassification tag tick events and signal metadata
// with the part of the attempt they belong to.
const (
	PhaseQuiz           = "quiz"
	PhaseClassification = "classification"
)

// QuestionData is the candidate-safe view of the current question.
type QuestionData struct {
	Index     int      `json:"index"`
	Total     int      `json:"total"`
	Prompt    string   `json:"prompt"`
	Choices   []string `json:"choices"`
	TimeLimit int      `json:"time_limit"`
	Selected  int      `json:"selected"`
}

// PhaseData announces the classification phase with its term catalog.
type PhaseData struct {
	Terms       []model.ClassificationTerm              `json:"terms"`
	Categories  []model.ClassificationCategory          `json:"categories"`
	Assignments map[string]model.ClassificationCategory `json:"assignments"`
	TimeLeft    int                                     `json:"time_left"`
}

// StateData is the full snapshot sent on attach and after resume.
type StateData struct {
	SessionID         string              `json:"session_id"`
	Status            model.SessionStatus `json:"status"`
	QuizName          string              `json:"quiz_name"`
	Question          *QuestionData       `json:"question,omitempty"`
	Classification    *PhaseData          `json:"classification,omitempty"`
	TimeLeft          int                 `json:"time_left"`
	Answers           []int               `json:"answers"`
	WarningActive     bool                `json:"warning_active"`
	SuppressedSignals []model.SignalType  `json:"suppressed_signals"`
}

// TickData carries the once-per-second countdown value.
type TickData struct {
	Phase    string `json:"phase"`
	TimeLeft int    `json:"time_left"`
}

// WarningData accompanies the first tab-switch sanction.
type WarningData struct {
	Message string `json:"message"`
}

// CancelledData accompanies attempt termination for cause.
type CancelledData struct {
	Message     string    `json:"message"`
	CompletedAt time.Time `json:"completed_at"`
}

// ClassificationResultData shows the graded board before finalization.
type ClassificationResultData struct {
	Score      int             `json:"score"`
	PerTerm    map[string]bool `json:"per_term"`
	RedirectIn int             `json:"redirect_in"`
}

// CompletedData is the terminal summary of a finished attempt.
type CompletedData struct {
	Score               *int `json:"score,omitempty"`
	ClassificationScore *int `json:"classification_score,omitempty"`
	CompletionTime      int  `json:"completion_time"`
}

// ErrorData reports a rejected client action without closing the stream.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
