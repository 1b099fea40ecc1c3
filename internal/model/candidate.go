package model

import (
	"time"

	"github.com/google/uuid"
)

// CandidateLevel is the seniority grade of a candidate.
type CandidateLevel string

const (
	LevelC1 CandidateLevel = "C1"
	LevelC2 CandidateLevel = "C2"
	LevelC3 CandidateLevel = "C3"
)

// Candidate is a roster entry. The roster supplies access codes; the
// identity actually attached to a session is the CandidateInfo snapshot
// taken at login, never a live roster read.
type Candidate struct {
	ID         uuid.UUID      `json:"id"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Email      string         `json:"email"`
	Manager    string         `json:"manager"`
	Department string         `json:"department"`
	Level      CandidateLevel `json:"level"`
	Role       string         `json:"role"`
	AccessCode string         `json:"access_code"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CandidateInfo is the identity snapshot embedded in a session at
// creation time. Later roster edits never touch an in-flight session.
type CandidateInfo struct {
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Email      string         `json:"email"`
	Manager    string         `json:"manager"`
	Department string         `json:"department"`
	Level      CandidateLevel `json:"level"`
	Role       string         `json:"role"`
}

// CreateCandidateRequest is the payload for adding a roster entry.
type CreateCandidateRequest struct {
	FirstName  string         `json:"first_name" binding:"required,min=1,max=100"`
	LastName   string         `json:"last_name" binding:"required,min=1,max=100"`
	Email      string         `json:"email" binding:"required,email,max=255"`
	Manager    string         `json:"manager" binding:"required,max=100"`
	Department string         `json:"department" binding:"required,max=100"`
	Level      CandidateLevel `json:"level" binding:"required,oneof=C1 C2 C3"`
	Role       string         `json:"role" binding:"required,max=100"`
	AccessCode string         `json:"access_code" binding:"omitempty,min=4,max=20"`
}

// UpdateCandidateRequest is the payload for updating a roster entry.
type UpdateCandidateRequest struct {
	FirstName  string         `json:"first_name" binding:"required,min=1,max=100"`
	LastName   string         `json:"last_name" binding:"required,min=1,max=100"`
	Email      string         `json:"email" binding:"required,email,max=255"`
	Manager    string         `json:"manager" binding:"required,max=100"`
	Department string         `json:"department" binding:"required,max=100"`
	Level      CandidateLevel `json:"level" binding:"required,oneof=C1 C2 C3"`
	Role       string         `json:"role" binding:"required,max=100"`
}
