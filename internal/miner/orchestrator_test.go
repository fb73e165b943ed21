package miner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/scvgr/scavd/internal/submit"
)

// solvingOracle always returns a hash that meets any difficulty.
type solvingOracle struct {
	mu     sync.Mutex
	calls  int
	closed bool
}

func (s *solvingOracle) Exchange(_ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return meetsAll, nil
}

func (s *solvingOracle) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// recordingMetrics captures hashrate reports.
type recordingMetrics struct {
	mu      sync.Mutex
	reports int
}

func (m *recordingMetrics) ReportHashrate(_ context.Context, _ string, _, _ uint64, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports++
}

func (m *recordingMetrics) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reports
}

func testOrchestratorConfig(workers int) Config {
	return Config{
		Address:       "addr1",
		Workers:       workers,
		NonceBatch:    64,
		SubmitOnFind:  true,
		StatsInterval: 50 * time.Millisecond,
	}
}

func TestOrchestrator_PublishedChallengeSnapshot(t *testing.T) {
	o := NewOrchestrator(testOrchestratorConfig(1), minerTestLogger(), NewStats(), NewStop(),
		func() Exchanger { return &solvingOracle{} }, &fakeSubmitter{}, nil, nil)

	if o.Challenge() != nil {
		t.Error("Expected nil challenge before publication")
	}

	first := activeChallenge()
	o.SetChallenge(first)
	if o.Challenge() != first {
		t.Error("Expected published challenge snapshot")
	}

	second := activeChallenge()
	second.ID = "c2"
	o.SetChallenge(second)
	if o.Challenge().ID != "c2" {
		t.Error("Expected replacement to supersede the previous challenge")
	}
}

func TestOrchestrator_RunWithoutChallengeReturns(t *testing.T) {
	o := NewOrchestrator(testOrchestratorConfig(2), minerTestLogger(), NewStats(), NewStop(),
		func() Exchanger { return &solvingOracle{} }, &fakeSubmitter{}, nil, nil)

	done := make(chan struct{})
	go func() {
		o.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return without a published challenge")
	}
}

func TestOrchestrator_FirstTerminalOutcomeStopsAllWorkers(t *testing.T) {
	var oracles []*solvingOracle
	var oraclesMu sync.Mutex
	newOracle := func() Exchanger {
		oraclesMu.Lock()
		defer oraclesMu.Unlock()
		o := &solvingOracle{}
		oracles = append(oracles, o)
		return o
	}

	stats := NewStats()
	stop := NewStop()
	sub := &fakeSubmitter{outcome: submit.Outcome{Accepted: true, Attempts: 1}}

	o := NewOrchestrator(testOrchestratorConfig(4), minerTestLogger(), stats, stop, newOracle, sub, nil, nil)
	o.SetChallenge(activeChallenge())

	done := make(chan struct{})
	go func() {
		o.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after a terminal submission outcome")
	}

	if !stop.IsSet() {
		t.Error("Expected stop signal set")
	}

	// Every worker's connection is torn down at join time.
	oraclesMu.Lock()
	defer oraclesMu.Unlock()
	if len(oracles) != 4 {
		t.Fatalf("Expected 4 per-worker oracle connections, got %d", len(oracles))
	}
	for i, oc := range oracles {
		oc.mu.Lock()
		closed := oc.closed
		oc.mu.Unlock()
		if !closed {
			t.Errorf("Expected oracle %d closed after join", i)
		}
	}

	_, solutions := stats.Snapshot()
	if solutions == 0 {
		t.Error("Expected at least one recorded solution")
	}
}

func TestOrchestrator_EnforcesValidityWindow(t *testing.T) {
	oracle := &solvingOracle{}
	stop := NewStop()

	o := NewOrchestrator(testOrchestratorConfig(2), minerTestLogger(), NewStats(), stop,
		func() Exchanger { return oracle }, &fakeSubmitter{}, nil, nil)

	expired := activeChallenge()
	expired.LatestSubmission = "2020-01-01T00:00:00Z"
	o.SetChallenge(expired)

	done := make(chan struct{})
	go func() {
		o.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return for an expired challenge")
	}

	if !stop.IsSet() {
		t.Error("Expected orchestrator to stop an expired challenge run")
	}

	oracle.mu.Lock()
	calls := oracle.calls
	oracle.mu.Unlock()
	if calls != 0 {
		t.Errorf("Expected zero oracle exchanges for an expired challenge, got %d", calls)
	}
}

func TestOrchestrator_ReportsMetrics(t *testing.T) {
	metrics := &recordingMetrics{}
	stats := NewStats()
	stop := NewStop()

	// Workers search a mask nothing meets so the run only ends via stop.
	neverMeets := activeChallenge()
	neverMeets.Difficulty = "00000000"

	missOracle := func() Exchanger { return &constantOracle{hash: "ffffffff00000000"} }

	o := NewOrchestrator(testOrchestratorConfig(1), minerTestLogger(), stats, stop, missOracle, &fakeSubmitter{}, nil, metrics)
	o.SetChallenge(neverMeets)

	done := make(chan struct{})
	go func() {
		o.Run(context.Background())
		close(done)
	}()

	// Let a few stats intervals elapse, then end the run.
	time.Sleep(200 * time.Millisecond)
	stop.Set()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after stop")
	}

	if metrics.count() == 0 {
		t.Error("Expected at least one hashrate report")
	}

	hashes, _ := stats.Snapshot()
	if hashes == 0 {
		t.Error("Expected counted hashes during the run")
	}
}

// constantOracle always returns the same hash.
type constantOracle struct {
	hash string
}

func (c *constantOracle) Exchange(_ string) (string, error) { return c.hash, nil }
func (c *constantOracle) Close() error                      { return nil }

func TestOrchestrator_JoinsWorkersOnCancel(t *testing.T) {
	neverMeets := activeChallenge()
	neverMeets.Difficulty = "00000000"

	o := NewOrchestrator(testOrchestratorConfig(3), minerTestLogger(), NewStats(), NewStop(),
		func() Exchanger { return &constantOracle{hash: "ffffffff00000000"} }, &fakeSubmitter{}, nil, nil)
	o.SetChallenge(neverMeets)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not join workers after cancellation")
	}
}
