package messaging

// Kafka topics for miner lifecycle events.
const (
	// TopicSolutions carries every qualifying nonce the pool finds.
	TopicSolutions = "scavenger.solutions"
	// TopicSubmissions carries terminal submission outcomes.
	TopicSubmissions = "scavenger.submissions"
	// TopicChallengeRuns carries per-challenge run summaries.
	TopicChallengeRuns = "scavenger.challenge-runs"
)
