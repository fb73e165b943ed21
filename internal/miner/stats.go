// Package miner contains the worker/orchestrator concurrency model: a fixed
// pool of workers racing over a shared published challenge, a cooperative
// stop signal carrying the first terminal outcome, and the sequential run
// loop that drives one challenge at a time.
package miner

import (
	"sync"
	"time"
)

// Stats holds process-wide counters shared by all workers of a challenge
// run. Counters are reset at the start of each challenge.
type Stats struct {
	mu         sync.Mutex
	hashes     uint64
	solutions  uint64
	lastReport time.Time
}

// NewStats creates zeroed counters.
func NewStats() *Stats {
	return &Stats{lastReport: time.Now()}
}

// AddHashes adds n to the hash counter. Failed oracle exchanges are never
// counted; callers add only for exchanges that produced a hash.
func (s *Stats) AddHashes(n uint64) {
	s.mu.Lock()
	s.hashes += n
	s.mu.Unlock()
}

// IncSolutions increments the solution counter.
func (s *Stats) IncSolutions() {
	s.mu.Lock()
	s.solutions++
	s.mu.Unlock()
}

// Snapshot returns the current counters. The values are a consistent pair
// but may lag concurrent writers; reporting tolerates that.
func (s *Stats) Snapshot() (hashes, solutions uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hashes, s.solutions
}

// MarkReport records when the reporting loop last ran.
func (s *Stats) MarkReport(t time.Time) {
	s.mu.Lock()
	s.lastReport = t
	s.mu.Unlock()
}

// LastReport returns the last reporting timestamp.
func (s *Stats) LastReport() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

// Reset zeroes the counters for the next challenge.
func (s *Stats) Reset() {
	s.mu.Lock()
	s.hashes = 0
	s.solutions = 0
	s.lastReport = time.Now()
	s.mu.Unlock()
}
