package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates test session states.
type SessionStatus string

const (
	SessionStatusInProgress     SessionStatus = "in_progress"
	SessionStatusClassification SessionStatus = "classification_game"
	SessionStatusCompleted      SessionStatus = "completed"
	SessionStatusCancelled      SessionStatus = "cancelled"
)

// Terminal reports whether the status accepts no further mutation.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// SignalType classifies an integrity signal observed during an attempt.
type SignalType string

const (
	SignalTabSwitch   SignalType = "tab_switch"
	SignalWindowBlur  SignalType = "window_blur"
	SignalFocusRegain SignalType = "focus_regain"
	SignalRightClick  SignalType = "right_click"
	SignalDevTools    SignalType = "dev_tools"
)

// KnownSignal reports whether t is one of the five observed signal types.
func KnownSignal(t SignalType) bool {
	switch t {
	case SignalTabSwitch, SignalWindowBlur, SignalFocusRegain, SignalRightClick, SignalDevTools:
		return true
	}
	return false
}

// NoAnswer marks a question the candidate never answered before its
// countdown expired.
const NoAnswer = -1

// SignalContext is the metadata captured with every integrity signal.
type SignalContext struct {
	QuestionIndex int    `json:"question_index"`
	TimeLeft      int    `json:"time_left"`
	Phase         string `json:"phase,omitempty"`
	Detail        string `json:"detail,omitempty"`
}

// CheatingAttempt is one append-only integrity log entry. The list on a
// session only grows; entries are never mutated in place.
type CheatingAttempt struct {
	Type      SignalType    `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Warning   bool          `json:"warning"`
	Metadata  SignalContext `json:"metadata"`
}

// TestSession is one candidate's single attempt at a quiz, from login to
// a terminal state. Answers are index-aligned with the quiz's question
// order; NoAnswer denotes an expired question.
type TestSession struct {
	ID                  uuid.UUID         `json:"id"`
	QuizID              uuid.UUID         `json:"quiz_id"`
	Candidate           CandidateInfo     `json:"candidate"`
	Status              SessionStatus     `json:"status"`
	StartedAt           time.Time         `json:"started_at"`
	CompletedAt         *time.Time        `json:"completed_at,omitempty"`
	CompletionTime      int               `json:"completion_time"`
	Answers             []int             `json:"answers"`
	Score               *int              `json:"score,omitempty"`
	ClassificationScore *int              `json:"classification_score,omitempty"`
	CheatingAttempts    []CheatingAttempt `json:"cheating_attempts"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *TestSession) Clone() *TestSession {
	cp := *s
	cp.Answers = append([]int(nil), s.Answers...)
	cp.CheatingAttempts = append([]CheatingAttempt(nil), s.CheatingAttempts...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		cp.CompletedAt = &t
	}
	if s.Score != nil {
		v := *s.Score
		cp.Score = &v
	}
	if s.ClassificationScore != nil {
		v := *s.ClassificationScore
		cp.ClassificationScore = &v
	}
	return &cp
}

// LoginRequest is the payload a candidate submits to start or resume an
// attempt: both opaque access codes plus the full identity form.
type LoginRequest struct {
	QuizCode      string         `json:"quiz_code" binding:"required,min=4,max=20"`
	CandidateCode string         `json:"candidate_code" binding:"required,min=4,max=20"`
	FirstName     string         `json:"first_name" binding:"required,min=1,max=100"`
	LastName      string         `json:"last_name" binding:"required,min=1,max=100"`
	Email         string         `json:"email" binding:"required,email,max=255"`
	Manager       string         `json:"manager" binding:"required,max=100"`
	Department    string         `json:"department" binding:"required,max=100"`
	Level         CandidateLevel `json:"level" binding:"required,oneof=C1 C2 C3"`
	Role          string         `json:"role" binding:"required,max=100"`
}

// Info builds the identity snapshot embedded in a new session.
func (r *LoginRequest) Info() CandidateInfo {
	return CandidateInfo{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Manager:    r.Manager,
		Department: r.Department,
		Level:      r.Level,
		Role:       r.Role,
	}
}
