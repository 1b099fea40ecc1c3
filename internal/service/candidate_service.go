package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/repository"
)

// ErrCandidateNotFound means no roster entry matches.
var ErrCandidateNotFound = errors.New("candidate not found")

// CandidateService manages the candidate roster.
type CandidateService struct {
	candidates *repository.CandidateRepository
}

// NewCandidateService creates a new CandidateService.
func NewCandidateService(candidates *repository.CandidateRepository) *CandidateService {
	return &CandidateService{candidates: candidates}
}

// Create adds a roster entry, generating an access code when none is
// supplied.
func (s *CandidateService) Create(ctx context.Context, req *model.CreateCandidateRequest) (*model.Candidate, error) {
	c := &model.Candidate{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Manager:    req.Manager,
		Department: req.Department,
		Level:      req.Level,
		Role:       req.Role,
		AccessCode: NormalizeAccessCode(req.AccessCode),
	}
	if c.AccessCode == "" {
		c.AccessCode = GenerateAccessCode()
	}
	if err := s.candidates.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves one roster entry.
func (s *CandidateService) GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	c, err := s.candidates.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCandidateNotFound
	}
	return c, err
}

// GetByAccessCode resolves a candidate's personal access code.
func (s *CandidateService) GetByAccessCode(ctx context.Context, code string) (*model.Candidate, error) {
	c, err := s.candidates.GetByAccessCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCandidateNotFound
	}
	return c, err
}

// List retrieves the whole roster.
func (s *CandidateService) List(ctx context.Context) ([]model.Candidate, error) {
	return s.candidates.List(ctx)
}

// Update rewrites a roster entry.
func (s *CandidateService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateCandidateRequest) (*model.Candidate, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.FirstName = req.FirstName
	c.LastName = req.LastName
	c.Email = req.Email
	c.Manager = req.Manager
	c.Department = req.Department
	c.Level = req.Level
	c.Role = req.Role

	if err := s.candidates.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a roster entry.
func (s *CandidateService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.candidates.Delete(ctx, id)
}
