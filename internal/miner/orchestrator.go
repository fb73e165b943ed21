package miner

import (
	"context"
	"sync"
	"time"

	"github.com/scvgr/scavd/internal/challenge"
	"github.com/scvgr/scavd/pkg/log"
)

// stopPollInterval bounds how long the reporting loop goes between
// stop-signal and validity-window checks.
const stopPollInterval = 100 * time.Millisecond

// Config holds the knobs for one challenge run.
type Config struct {
	Address       string
	Workers       int
	NonceBatch    int
	SubmitOnFind  bool
	StatsInterval time.Duration
}

// MetricsReporter receives periodic throughput observations. A nil reporter
// disables external metrics; the structured log line is always emitted.
type MetricsReporter interface {
	ReportHashrate(ctx context.Context, challengeID string, hashes, solutions uint64, perSec float64)
}

// Orchestrator owns the single published challenge slot, starts the
// fixed-size worker pool, and runs the reporting loop until the stop signal
// is observed. Workers read the published challenge through Challenge and
// never see partial updates: SetChallenge swaps the whole snapshot under a
// write lock.
type Orchestrator struct {
	cfg       Config
	logger    *log.Logger
	stats     *Stats
	stop      *Stop
	newOracle func() Exchanger
	submitter Submitter
	sink      SolutionSink
	metrics   MetricsReporter

	mu      sync.RWMutex
	current *challenge.Challenge
}

// NewOrchestrator creates an orchestrator for one challenge run. newOracle
// is invoked once per worker so every worker owns its own daemon connection.
func NewOrchestrator(cfg Config, logger *log.Logger, stats *Stats, stop *Stop,
	newOracle func() Exchanger, submitter Submitter, sink SolutionSink, metrics MetricsReporter) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		logger:    logger.WithComponent("orchestrator"),
		stats:     stats,
		stop:      stop,
		newOracle: newOracle,
		submitter: submitter,
		sink:      sink,
		metrics:   metrics,
	}
}

// SetChallenge publishes a challenge, replacing any previous one.
func (o *Orchestrator) SetChallenge(c *challenge.Challenge) {
	o.mu.Lock()
	o.current = c
	o.mu.Unlock()
}

// Challenge returns the currently published challenge snapshot, or nil.
func (o *Orchestrator) Challenge() *challenge.Challenge {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current
}

// newWorker builds one pool member bound to the shared state.
func (o *Orchestrator) newWorker(id int) *worker {
	return &worker{
		id:           id,
		address:      o.cfg.Address,
		oracle:       o.newOracle(),
		getChallenge: o.Challenge,
		submitter:    o.submitter,
		submitOnFind: o.cfg.SubmitOnFind,
		stats:        o.stats,
		stop:         o.stop,
		sink:         o.sink,
		logger:       o.logger.WithWorker(id),
		nonceBatch:   o.cfg.NonceBatch,
	}
}

// Run starts the worker pool and reports throughput every stats interval
// until the stop signal is set, the published challenge's validity window
// closes, or the context is canceled. All workers are joined before
// returning; cancellation is cooperative and an in-flight oracle exchange is
// allowed to complete.
func (o *Orchestrator) Run(ctx context.Context) {
	c := o.Challenge()
	if c == nil {
		o.logger.Warn("no challenge published")
		return
	}

	o.logger.Info("starting challenge run",
		"challenge_id", c.ID,
		"difficulty", c.Difficulty,
		"expires", c.LatestSubmission,
		"workers", o.cfg.Workers,
	)

	var wg sync.WaitGroup
	for i := range o.cfg.Workers {
		w := o.newWorker(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}

	o.report(ctx)

	// Make sure workers exit even when the loop ended on cancellation.
	o.stop.Set()
	wg.Wait()

	hashes, solutions := o.stats.Snapshot()
	o.logger.Info("challenge run finished",
		"challenge_id", c.ID,
		"hashes", hashes,
		"solutions", solutions,
	)
}

// report runs the periodic throughput loop and enforces the challenge's
// validity window at the orchestrator level.
func (o *Orchestrator) report(ctx context.Context) {
	statsTicker := time.NewTicker(o.cfg.StatsInterval)
	defer statsTicker.Stop()
	pollTicker := time.NewTicker(stopPollInterval)
	defer pollTicker.Stop()

	var prevHashes uint64
	prevTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pollTicker.C:
			if o.stop.IsSet() {
				return
			}
			if cur := o.Challenge(); cur != nil && cur.Expired(time.Now()) {
				o.logger.Info("challenge window closed", "challenge_id", cur.ID)
				o.stop.Set()
				return
			}

		case now := <-statsTicker.C:
			hashes, solutions := o.stats.Snapshot()
			elapsed := now.Sub(prevTime).Seconds()
			if elapsed <= 0 {
				elapsed = o.cfg.StatsInterval.Seconds()
			}
			perSec := float64(hashes-prevHashes) / elapsed

			challengeID := ""
			if cur := o.Challenge(); cur != nil {
				challengeID = cur.ID
			}
			o.logger.LogHashrate(challengeID, hashes, solutions, perSec)
			if o.metrics != nil {
				o.metrics.ReportHashrate(ctx, challengeID, hashes, solutions, perSec)
			}

			o.stats.MarkReport(now)
			prevHashes = hashes
			prevTime = now
		}
	}
}
