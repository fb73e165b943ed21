package miner

import "sync/atomic"

// Stop is the shared end-of-challenge signal. Any worker sets it on a
// terminal submission outcome; all workers and the orchestrator's reporting
// loop observe it cooperatively and exit their loops. A fresh Stop is
// created for each challenge run.
type Stop struct {
	flag atomic.Bool
}

// NewStop creates a cleared stop signal.
func NewStop() *Stop {
	return &Stop{}
}

// Set marks the current challenge run as finished. Safe to call from any
// worker; the first terminal outcome wins and later calls are no-ops.
func (s *Stop) Set() {
	s.flag.Store(true)
}

// IsSet reports whether the run should end.
func (s *Stop) IsSet() bool {
	return s.flag.Load()
}
