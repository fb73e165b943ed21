package messaging

import "time"

// SolutionFoundEvent is emitted when a worker finds a qualifying nonce.
type SolutionFoundEvent struct {
	Address     string    `json:"address"`
	ChallengeID string    `json:"challenge_id"`
	Nonce       string    `json:"nonce"`
	Hash        string    `json:"hash"`
	Difficulty  string    `json:"difficulty"`
	FoundAt     time.Time `json:"found_at"`
}

// SubmissionResultEvent is emitted when the submission protocol reaches a
// terminal outcome, accepted or exhausted.
type SubmissionResultEvent struct {
	Address     string    `json:"address"`
	ChallengeID string    `json:"challenge_id"`
	Nonce       string    `json:"nonce"`
	Accepted    bool      `json:"accepted"`
	Attempts    int       `json:"attempts"`
	LastStatus  int       `json:"last_status"`
	FinishedAt  time.Time `json:"finished_at"`
}

// ChallengeRunEvent summarizes one challenge run.
type ChallengeRunEvent struct {
	Address     string    `json:"address"`
	ChallengeID string    `json:"challenge_id"`
	Hashes      uint64    `json:"hashes"`
	Solutions   uint64    `json:"solutions"`
	FinishedAt  time.Time `json:"finished_at"`
}
