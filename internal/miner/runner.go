package miner

import (
	"context"
	"time"

	"github.com/scvgr/scavd/internal/challenge"
	"github.com/scvgr/scavd/pkg/log"
)

// challengePause separates consecutive challenge runs.
const challengePause = 1 * time.Second

// CompletedRegistry answers whether a challenge was already solved for an
// address, letting a rerun skip it. A nil registry disables skipping.
type CompletedRegistry interface {
	IsCompleted(ctx context.Context, address, challengeID string) (bool, error)
}

// ChallengeObserver is optionally implemented by a SolutionSink to observe
// per-challenge run summaries.
type ChallengeObserver interface {
	ChallengeFinished(ctx context.Context, c *challenge.Challenge, hashes, solutions uint64)
}

// Runner sequentially drives each challenge end to end: reset the shared
// counters, publish the challenge with a cleared stop signal, run the
// orchestrator until it returns, then move on. A fresh worker pool is
// started per challenge; there is no cross-challenge worker reuse.
type Runner struct {
	cfg       Config
	logger    *log.Logger
	stats     *Stats
	newOracle func() Exchanger
	submitter Submitter
	sink      SolutionSink
	metrics   MetricsReporter
	registry  CompletedRegistry
}

// NewRunner creates the run loop. submitter, sink, metrics, and registry
// may be nil when the corresponding integration is disabled.
func NewRunner(cfg Config, logger *log.Logger, newOracle func() Exchanger,
	submitter Submitter, sink SolutionSink, metrics MetricsReporter, registry CompletedRegistry) *Runner {
	return &Runner{
		cfg:       cfg,
		logger:    logger.WithComponent("runner"),
		stats:     NewStats(),
		newOracle: newOracle,
		submitter: submitter,
		sink:      sink,
		metrics:   metrics,
		registry:  registry,
	}
}

// Stats exposes the shared counters, mainly for final reporting.
func (r *Runner) Stats() *Stats {
	return r.stats
}

// Run exhausts the challenge list sequentially. It returns early only when
// the context is canceled; an unsolved or failed challenge does not prevent
// the next one from running.
func (r *Runner) Run(ctx context.Context, challenges []challenge.Challenge) error {
	for i := range challenges {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c := &challenges[i]

		if r.registry != nil {
			done, err := r.registry.IsCompleted(ctx, r.cfg.Address, c.ID)
			if err != nil {
				r.logger.WithError(err).Warn("completed-challenge lookup failed", "challenge_id", c.ID)
			} else if done {
				r.logger.Info("skipping already solved challenge", "challenge_id", c.ID)
				continue
			}
		}

		r.logger.LogChallengeStart(c.ID, c.Difficulty, c.LatestSubmission, i+1, len(challenges))

		// Fresh stop signal and zeroed counters per challenge.
		r.stats.Reset()
		stop := NewStop()

		orch := NewOrchestrator(r.cfg, r.logger, r.stats, stop, r.newOracle, r.submitter, r.sink, r.metrics)
		orch.SetChallenge(c)
		orch.Run(ctx)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if obs, ok := r.sink.(ChallengeObserver); ok {
			hashes, solutions := r.stats.Snapshot()
			obs.ChallengeFinished(ctx, c, hashes, solutions)
		}

		r.logger.Info("finished challenge", "challenge_id", c.ID)
		sleepCtx(ctx, challengePause)
	}

	r.logger.Info("all challenges processed", "count", len(challenges))
	return nil
}
