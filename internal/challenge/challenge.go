// Package challenge defines the unit of work read from the challenge source
// and the pure functions workers apply to it: difficulty evaluation and
// preimage construction for the hash oracle.
package challenge

import (
	"strings"
	"time"
)

// DefaultLatestSubmission is used when a source row carries no deadline.
const DefaultLatestSubmission = "2099-12-31T23:59:59.000Z"

// Challenge is a single proof-of-work challenge. It is constructed once from
// an external record and read concurrently by many workers; it is never
// mutated after construction.
type Challenge struct {
	ID               string
	Difficulty       string
	NoPreMine        string
	NoPreMineHour    string
	LatestSubmission string
}

// Valid reports whether the challenge carries all required fields.
func (c *Challenge) Valid() bool {
	return c.ID != "" && c.Difficulty != "" && c.NoPreMine != ""
}

// Deadline parses the challenge's latest submission timestamp. The second
// return value is false when the timestamp does not parse; callers proceed
// without a deadline check in that case.
func (c *Challenge) Deadline() (time.Time, bool) {
	raw := strings.TrimSpace(c.LatestSubmission)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Expired reports whether now is past the challenge's deadline. A challenge
// with no parseable deadline never expires.
func (c *Challenge) Expired(now time.Time) bool {
	deadline, ok := c.Deadline()
	if !ok {
		return false
	}
	return now.After(deadline)
}
