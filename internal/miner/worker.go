package miner

import (
	"context"
	"time"

	"github.com/scvgr/scavd/internal/challenge"
	"github.com/scvgr/scavd/internal/submit"
	"github.com/scvgr/scavd/pkg/errors"
	"github.com/scvgr/scavd/pkg/log"
)

const (
	// idleDelay is slept when no challenge is published.
	idleDelay = 500 * time.Millisecond
	// connectBackoff is slept when the oracle daemon cannot be reached.
	connectBackoff = 100 * time.Millisecond
	// exchangeBackoff is slept when an established exchange failed.
	exchangeBackoff = 10 * time.Millisecond
	// solutionPause is slept after a found solution before re-acquiring the
	// challenge, giving a rotation a chance to land.
	solutionPause = 500 * time.Millisecond
)

// Exchanger is the per-worker hash oracle connection. Implementations are
// owned by exactly one worker and never shared.
type Exchanger interface {
	Exchange(payload string) (string, error)
	Close() error
}

// Submitter drives the remote submission protocol for a found nonce.
type Submitter interface {
	Submit(ctx context.Context, challengeID, nonce string) submit.Outcome
}

// SolutionSink observes found solutions and terminal submission outcomes.
// Implementations persist or publish them; a nil sink is allowed.
type SolutionSink interface {
	SolutionFound(ctx context.Context, c *challenge.Challenge, nonce, hash string)
	SubmissionFinished(ctx context.Context, c *challenge.Challenge, nonce string, outcome submit.Outcome)
}

// worker repeatedly acquires the published challenge, searches nonces in
// bounded batches against its own oracle connection, and on success drives
// the submission protocol. Workers share only the published challenge, the
// stats counters, and the stop signal.
type worker struct {
	id           int
	address      string
	oracle       Exchanger
	getChallenge func() *challenge.Challenge
	submitter    Submitter
	submitOnFind bool
	stats        *Stats
	stop         *Stop
	sink         SolutionSink
	logger       *log.Logger
	nonceBatch   int
}

// run loops until the stop signal or context cancellation is observed.
// Cancellation is cooperative only; an in-flight oracle exchange completes
// before the next check.
func (w *worker) run(ctx context.Context) {
	defer w.oracle.Close()

	w.logger.Info("worker started")
	for !w.stop.IsSet() && ctx.Err() == nil {
		c := w.getChallenge()
		if c == nil {
			sleepCtx(ctx, idleDelay)
			continue
		}
		w.mine(ctx, c)
	}
	w.logger.Info("worker stopped")
}

// mine runs one bounded attempt batch against an acquired challenge. The
// batch size caps how long the worker goes between stop-signal and deadline
// checks at the acquisition level.
func (w *worker) mine(ctx context.Context, c *challenge.Challenge) {
	deadline, hasDeadline := c.Deadline()

	for range w.nonceBatch {
		if w.stop.IsSet() || ctx.Err() != nil {
			return
		}
		if hasDeadline && time.Now().After(deadline) {
			// Window closed; abandon silently and re-acquire.
			return
		}

		nonce := RandomNonce()
		payload := challenge.OraclePayload(nonce, w.address, c)

		hash, err := w.oracle.Exchange(payload)
		if err != nil {
			// Transient: does not count toward the hash rate.
			if errors.IsType(err, errors.ErrorTypeNetwork) {
				sleepCtx(ctx, connectBackoff)
			} else {
				sleepCtx(ctx, exchangeBackoff)
			}
			continue
		}

		w.stats.AddHashes(1)

		if !challenge.MeetsDifficulty(hash, c.Difficulty) {
			continue
		}

		w.found(ctx, c, nonce, hash)
		return // re-acquire the possibly rotated challenge
	}
}

// found handles a qualifying nonce: report it, and when submit-on-find is
// enabled drive the submission protocol to a terminal outcome. Either
// terminal outcome sets the stop signal: accepted means the challenge is
// done, exhausted means halt so the valid nonce is not searched over and
// discarded.
func (w *worker) found(ctx context.Context, c *challenge.Challenge, nonce, hash string) {
	w.logger.LogSolutionFound(c.ID, nonce, hash)
	w.stats.IncSolutions()

	if w.sink != nil {
		w.sink.SolutionFound(ctx, c, nonce, hash)
	}

	if w.submitOnFind && w.submitter != nil {
		outcome := w.submitter.Submit(ctx, c.ID, nonce)
		if w.sink != nil {
			w.sink.SubmissionFinished(ctx, c, nonce, outcome)
		}
		w.stop.Set()
		return
	}

	sleepCtx(ctx, solutionPause)
}

// sleepCtx sleeps for d or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
