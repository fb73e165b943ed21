package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SolutionRepository handles solution-related database operations
type SolutionRepository struct {
	db *sql.DB
}

// NewSolutionRepository creates a new solution repository
func NewSolutionRepository(db *sql.DB) *SolutionRepository {
	return &SolutionRepository{db: db}
}

// CreateSolution records a found solution and fills in its generated ID.
func (r *SolutionRepository) CreateSolution(ctx context.Context, sol *Solution) error {
	query := `
		INSERT INTO solutions (address, challenge_id, nonce, hash, difficulty, found_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if sol.FoundAt.IsZero() {
		sol.FoundAt = time.Now()
	}

	err := r.db.QueryRowContext(ctx, query,
		sol.Address, sol.ChallengeID, sol.Nonce, sol.Hash, sol.Difficulty, sol.FoundAt,
	).Scan(&sol.ID)

	if err != nil {
		return fmt.Errorf("failed to create solution: %w", err)
	}

	return nil
}

// RecordSubmission stores the terminal submission outcome for a solution.
func (r *SolutionRepository) RecordSubmission(ctx context.Context, solutionID int64, accepted bool, attempts, lastStatus int) error {
	query := `
		UPDATE solutions
		SET accepted = $1, attempts = $2, last_status = $3, submitted_at = $4
		WHERE id = $5`

	_, err := r.db.ExecContext(ctx, query, accepted, attempts, lastStatus, time.Now(), solutionID)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}

	return nil
}

// GetSolutionsByAddress retrieves solutions for an address with pagination,
// newest first.
func (r *SolutionRepository) GetSolutionsByAddress(ctx context.Context, address string, limit, offset int) ([]*Solution, error) {
	query := `
		SELECT id, address, challenge_id, nonce, hash, difficulty, found_at,
		       accepted, attempts, last_status, submitted_at
		FROM solutions
		WHERE address = $1
		ORDER BY found_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, address, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get solutions: %w", err)
	}
	defer rows.Close()

	var solutions []*Solution
	for rows.Next() {
		sol := &Solution{}
		err := rows.Scan(
			&sol.ID, &sol.Address, &sol.ChallengeID, &sol.Nonce, &sol.Hash, &sol.Difficulty,
			&sol.FoundAt, &sol.Accepted, &sol.Attempts, &sol.LastStatus, &sol.SubmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan solution: %w", err)
		}
		solutions = append(solutions, sol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate solutions: %w", err)
	}

	return solutions, nil
}

// GetAcceptedSolution returns the accepted solution for a challenge, or
// sql.ErrNoRows wrapped when none exists.
func (r *SolutionRepository) GetAcceptedSolution(ctx context.Context, address, challengeID string) (*Solution, error) {
	query := `
		SELECT id, address, challenge_id, nonce, hash, difficulty, found_at,
		       accepted, attempts, last_status, submitted_at
		FROM solutions
		WHERE address = $1 AND challenge_id = $2 AND accepted = true
		ORDER BY found_at DESC
		LIMIT 1`

	sol := &Solution{}
	err := r.db.QueryRowContext(ctx, query, address, challengeID).Scan(
		&sol.ID, &sol.Address, &sol.ChallengeID, &sol.Nonce, &sol.Hash, &sol.Difficulty,
		&sol.FoundAt, &sol.Accepted, &sol.Attempts, &sol.LastStatus, &sol.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get accepted solution: %w", err)
	}

	return sol, nil
}
