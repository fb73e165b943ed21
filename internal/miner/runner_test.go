package miner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/scvgr/scavd/internal/challenge"
	"github.com/scvgr/scavd/internal/submit"
)

// mapRegistry is an in-memory completed-challenge registry.
type mapRegistry struct {
	mu   sync.Mutex
	done map[string]bool
	errs map[string]error
}

func (m *mapRegistry) IsCompleted(_ context.Context, address, challengeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := address + "/" + challengeID
	if err := m.errs[key]; err != nil {
		return false, err
	}
	return m.done[key], nil
}

func testRunnerConfig() Config {
	return Config{
		Address:       "addr1",
		Workers:       2,
		NonceBatch:    64,
		SubmitOnFind:  true,
		StatsInterval: time.Second,
	}
}

func TestRunner_ProcessesChallengesSequentially(t *testing.T) {
	sub := &fakeSubmitter{outcome: submit.Outcome{Accepted: true, Attempts: 1}}
	r := NewRunner(testRunnerConfig(), minerTestLogger(),
		func() Exchanger { return &solvingOracle{} }, sub, nil, nil, nil)

	challenges := []challenge.Challenge{
		*activeChallenge(),
		*activeChallenge(),
	}
	challenges[1].ID = "c2"

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := r.Run(ctx, challenges); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	seen := map[string]bool{}
	for _, req := range sub.requests {
		seen[req[:2]] = true
	}
	if !seen["c1"] || !seen["c2"] {
		t.Errorf("Expected submissions for both challenges, got %v", sub.requests)
	}
}

func TestRunner_SkipsCompletedChallenges(t *testing.T) {
	reg := &mapRegistry{done: map[string]bool{"addr1/c1": true}}
	sub := &fakeSubmitter{outcome: submit.Outcome{Accepted: true, Attempts: 1}}
	r := NewRunner(testRunnerConfig(), minerTestLogger(),
		func() Exchanger { return &solvingOracle{} }, sub, nil, nil, reg)

	challenges := []challenge.Challenge{
		*activeChallenge(),
		*activeChallenge(),
	}
	challenges[1].ID = "c2"

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := r.Run(ctx, challenges); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	for _, req := range sub.requests {
		if req[:2] == "c1" {
			t.Errorf("Expected completed challenge skipped, got submission %s", req)
		}
	}
	if len(sub.requests) == 0 {
		t.Error("Expected the remaining challenge to be worked")
	}
}

func TestRunner_RegistryErrorDoesNotSkip(t *testing.T) {
	reg := &mapRegistry{errs: map[string]error{"addr1/c1": context.DeadlineExceeded}}
	sub := &fakeSubmitter{outcome: submit.Outcome{Accepted: true, Attempts: 1}}
	r := NewRunner(testRunnerConfig(), minerTestLogger(),
		func() Exchanger { return &solvingOracle{} }, sub, nil, nil, reg)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := r.Run(ctx, []challenge.Challenge{*activeChallenge()}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if sub.submissions() == 0 {
		t.Error("Expected a lookup failure to fall through to mining")
	}
}

func TestRunner_ReturnsOnCanceledContext(t *testing.T) {
	r := NewRunner(testRunnerConfig(), minerTestLogger(),
		func() Exchanger { return &solvingOracle{} }, &fakeSubmitter{}, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, []challenge.Challenge{*activeChallenge()})
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunner_CountersResetBetweenChallenges(t *testing.T) {
	sub := &fakeSubmitter{outcome: submit.Outcome{Accepted: true, Attempts: 1}}
	r := NewRunner(testRunnerConfig(), minerTestLogger(),
		func() Exchanger { return &solvingOracle{} }, sub, nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := r.Run(ctx, []challenge.Challenge{*activeChallenge()}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Run starts each challenge from zeroed counters, so after a single
	// accepted-on-find challenge at most a handful of hashes are recorded.
	_, solutions := r.Stats().Snapshot()
	if solutions == 0 {
		t.Error("Expected at least one solution recorded")
	}
}
