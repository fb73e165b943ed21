// Package errlog accumulates submission errors in memory for the lifetime of
// the process and flushes them to a file on exit. Losing the record of a
// failed submission would mean losing the only trace of a valid nonce, so
// entries are never dropped.
package errlog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Entry is one recorded submission error.
type Entry struct {
	Timestamp   string
	Address     string
	ChallengeID string
	Nonce       string
	Error       string
}

// String renders the entry in the flush file's line format.
func (e Entry) String() string {
	return fmt.Sprintf("%s - %s/%s/%s - %s", e.Timestamp, e.Address, e.ChallengeID, e.Nonce, e.Error)
}

// Recorder is a process-wide, append-only error log safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty error log.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one error with the current UTC timestamp.
func (r *Recorder) Record(address, challengeID, nonce, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, Entry{
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		Address:     address,
		ChallengeID: challengeID,
		Nonce:       nonce,
		Error:       errMsg,
	})
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Entries returns a snapshot of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Flush writes all entries to a file named from the address and the current
// local time, one line per entry. It is a no-op when nothing was recorded.
// Returns the file path written, or "" when empty.
func (r *Recorder) Flush(address string) (string, error) {
	entries := r.Entries()
	if len(entries) == 0 {
		return "", nil
	}

	filename := fmt.Sprintf("%s.%s.txt", address, time.Now().Format("20060102_150405"))

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}

	if err := os.WriteFile(filename, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write error log %s: %w", filename, err)
	}

	return filename, nil
}
