package main

import (
	"context"
	"testing"

	"github.com/scvgr/scavd/internal/challenge"
	"github.com/scvgr/scavd/internal/config"
	"github.com/scvgr/scavd/internal/miner"
	"github.com/scvgr/scavd/internal/submit"
	"github.com/scvgr/scavd/pkg/log"
)

var (
	_ miner.SolutionSink      = (*pipeline)(nil)
	_ miner.MetricsReporter   = (*pipeline)(nil)
	_ miner.CompletedRegistry = (*pipeline)(nil)
	_ miner.ChallengeObserver = (*pipeline)(nil)
)

func testPipeline() *pipeline {
	logger := log.New("scavd-test", "test", "error", "json")
	return newPipeline("addr1", logger, nil, nil)
}

func testChallenge() *challenge.Challenge {
	return &challenge.Challenge{
		ID:               "c1",
		Difficulty:       "00000fff",
		NoPreMine:        "npm",
		LatestSubmission: "2099-12-31T23:59:59.000Z",
	}
}

func TestPipeline_TracksPendingSolutions(t *testing.T) {
	p := testPipeline()
	c := testChallenge()

	p.SolutionFound(context.Background(), c, "00000000deadbeef", "00000abc")
	if len(p.pending) != 1 {
		t.Fatalf("Expected 1 pending solution, got %d", len(p.pending))
	}

	p.SubmissionFinished(context.Background(), c, "00000000deadbeef",
		submit.Outcome{Accepted: true, Attempts: 1, LastStatus: 201})
	if len(p.pending) != 0 {
		t.Errorf("Expected pending solution cleared, got %d", len(p.pending))
	}
}

func TestPipeline_NoBackendsIsInert(t *testing.T) {
	p := testPipeline()
	c := testChallenge()
	ctx := context.Background()

	// With no backends every callback must still be safe to invoke.
	p.SolutionFound(ctx, c, "0000000000000001", "00000abc")
	p.SubmissionFinished(ctx, c, "0000000000000001", submit.Outcome{Attempts: 3, LastStatus: 500})
	p.ChallengeFinished(ctx, c, 100, 1)
	p.ReportHashrate(ctx, c.ID, 100, 1, 10.5)

	done, err := p.IsCompleted(ctx, "addr1", c.ID)
	if err != nil {
		t.Fatalf("IsCompleted failed: %v", err)
	}
	if done {
		t.Error("Expected no challenge completed without a registry backend")
	}
}

func TestNewDatabaseManager_AllDisabled(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	m, err := newDatabaseManager(cfg)
	if err != nil {
		t.Fatalf("newDatabaseManager failed: %v", err)
	}
	if m != nil {
		t.Error("Expected nil manager when all backends are disabled")
	}
}
