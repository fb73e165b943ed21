package postgres

import (
	"time"
)

// Solution represents a qualifying nonce found for a challenge, together
// with the outcome of its submission.
type Solution struct {
	ID          int64      `db:"id"`
	Address     string     `db:"address"`
	ChallengeID string     `db:"challenge_id"`
	Nonce       string     `db:"nonce"`
	Hash        string     `db:"hash"`
	Difficulty  string     `db:"difficulty"`
	FoundAt     time.Time  `db:"found_at"`
	Accepted    bool       `db:"accepted"`
	Attempts    int        `db:"attempts"`
	LastStatus  int        `db:"last_status"`
	SubmittedAt *time.Time `db:"submitted_at"`
}
