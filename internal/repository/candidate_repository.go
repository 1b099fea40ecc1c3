package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexpaac/testrh-backend/internal/model"
)

// CandidateRepository handles candidate roster data access.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

const candidateColumns = `id, first_name, last_name, email, manager, department, level, role, access_code, created_at`

func scanCandidate(row interface{ Scan(...any) error }) (*model.Candidate, error) {
	var c model.Candidate
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Manager,
		&c.Department, &c.Level, &c.Role, &c.AccessCode, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a roster entry.
func (r *CandidateRepository) Create(ctx context.Context, c *model.Candidate) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO candidates (first_name, last_name, email, manager, department, level, role, access_code)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		c.FirstName, c.LastName, c.Email, c.Manager, c.Department, c.Level, c.Role, c.AccessCode,
	).Scan(&c.ID, &c.CreatedAt)
}

// GetByID retrieves a roster entry by its id.
func (r *CandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	return scanCandidate(r.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
}

// GetByAccessCode retrieves a roster entry by its personal access code.
func (r *CandidateRepository) GetByAccessCode(ctx context.Context, code string) (*model.Candidate, error) {
	return scanCandidate(r.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE access_code = $1`, code))
}

// List retrieves the whole roster ordered by last name.
func (r *CandidateRepository) List(ctx context.Context) ([]model.Candidate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []model.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *c)
	}
	return candidates, rows.Err()
}

// Update rewrites a roster entry. The access code is never changed here.
func (r *CandidateRepository) Update(ctx context.Context, c *model.Candidate) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE candidates
		 SET first_name = $2, last_name = $3, email = $4, manager = $5,
		     department = $6, level = $7, role = $8
		 WHERE id = $1`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Manager, c.Department, c.Level, c.Role,
	)
	return err
}

// Delete removes a roster entry.
func (r *CandidateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	return err
}
