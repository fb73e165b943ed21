// Package main implements scavd, the scavenger challenge miner. It loads a
// challenge list from CSV, runs a worker pool against a local hash oracle
// daemon, and submits qualifying nonces to the remote scavenger service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/scvgr/scavd/internal/challenge"
	"github.com/scvgr/scavd/internal/config"
	"github.com/scvgr/scavd/internal/database"
	"github.com/scvgr/scavd/internal/database/influx"
	"github.com/scvgr/scavd/internal/database/postgres"
	"github.com/scvgr/scavd/internal/database/redis"
	"github.com/scvgr/scavd/internal/errlog"
	"github.com/scvgr/scavd/internal/messaging"
	"github.com/scvgr/scavd/internal/miner"
	"github.com/scvgr/scavd/internal/oracle"
	"github.com/scvgr/scavd/internal/submit"
	"github.com/scvgr/scavd/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := log.New(cfg.ServiceName, cfg.Version, cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting scavd",
		"version", cfg.Version,
		"address", cfg.Address,
		"workers", cfg.Workers,
		"oracle", cfg.OracleHost+":"+cfg.OraclePort,
	)

	// Load the challenge list
	challenges, err := challenge.LoadCSV(cfg.CSVPath)
	if err != nil {
		logger.WithError(err).Error("failed to load challenges", "path", cfg.CSVPath)
		os.Exit(1)
	}
	if len(challenges) == 0 {
		logger.Error("no usable challenges in CSV", "path", cfg.CSVPath)
		os.Exit(1)
	}
	logger.Info("loaded challenges", "count", len(challenges), "path", cfg.CSVPath)

	// Create database manager for the enabled backends
	dbManager, err := newDatabaseManager(cfg)
	if err != nil {
		logger.WithError(err).Error("failed to create database manager")
		os.Exit(1)
	}
	if dbManager != nil {
		defer func() {
			if err := dbManager.Close(); err != nil {
				logger.WithError(err).Error("failed to close database manager")
			}
		}()
	}

	// Create Kafka client
	var kafkaClient *messaging.KafkaClient
	if cfg.KafkaEnabled {
		kafkaClient = messaging.NewKafkaClient(cfg.KafkaBrokers, logger)
		defer func() {
			if err := kafkaClient.Close(); err != nil {
				logger.WithError(err).Error("failed to close Kafka client")
			}
		}()
	}

	// Submission failures accumulate here and are written out at exit.
	recorder := errlog.NewRecorder()

	submitter := submit.NewClient(cfg.BaseURL, cfg.Address, cfg.SubmitTimeout, recorder, logger)

	newOracle := func() miner.Exchanger {
		return oracle.NewClient(cfg.OracleHost, cfg.OraclePort, cfg.SocketTimeout)
	}

	var sink miner.SolutionSink
	var metrics miner.MetricsReporter
	var registry miner.CompletedRegistry
	if dbManager != nil || kafkaClient != nil {
		p := newPipeline(cfg.Address, logger, dbManager, kafkaClient)
		sink = p
		if dbManager != nil {
			metrics = p
			registry = p
		}
	}

	minerCfg := miner.Config{
		Address:       cfg.Address,
		Workers:       cfg.Workers,
		NonceBatch:    cfg.NonceBatch,
		SubmitOnFind:  cfg.SubmitOnFind,
		StatsInterval: cfg.StatsInterval,
	}

	runner := miner.NewRunner(minerCfg, logger, newOracle, submitter, sink, metrics, registry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx, challenges); err != nil {
		logger.Info("run interrupted", "reason", err.Error())
	}

	hashes, solutions := runner.Stats().Snapshot()
	logger.Info("scavd stopped", "hashes", hashes, "solutions", solutions)

	// Flush accumulated submission errors to a per-run file.
	if recorder.Len() > 0 {
		path, err := recorder.Flush(cfg.Address)
		if err != nil {
			logger.WithError(err).Error("failed to write error log")
		} else {
			logger.Info("wrote error log", "path", path, "entries", recorder.Len())
		}
	}
}

// newDatabaseManager builds a manager covering the enabled backends, or nil
// when none are enabled.
func newDatabaseManager(cfg *config.Config) (*database.Manager, error) {
	if !cfg.PostgresEnabled && !cfg.RedisEnabled && !cfg.InfluxEnabled {
		return nil, nil
	}

	dbConfig := &database.Config{}

	if cfg.PostgresEnabled {
		dbConfig.Postgres = &postgres.Config{
			Host:         cfg.PostgresHost,
			Port:         cfg.PostgresPort,
			Database:     cfg.PostgresDatabase,
			User:         cfg.PostgresUser,
			Password:     cfg.PostgresPassword,
			SSLMode:      cfg.PostgresSSLMode,
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			MaxLifetime:  5 * time.Minute,
		}
	}

	if cfg.RedisEnabled {
		dbConfig.Redis = &redis.Config{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}
	}

	if cfg.InfluxEnabled {
		dbConfig.Influx = &influx.Config{
			URL:    cfg.InfluxURL,
			Token:  cfg.InfluxToken,
			Org:    cfg.InfluxOrg,
			Bucket: cfg.InfluxBucket,
		}
	}

	return database.NewManager(dbConfig)
}

// pipeline fans miner events out to the enabled backends: PostgreSQL for
// persistence, Redis for the completed registry, InfluxDB for metrics, and
// Kafka for downstream consumers. Every leg is best effort; a backend
// failure never interrupts mining.
type pipeline struct {
	address string
	logger  *log.Logger
	db      *database.Manager
	kafka   *messaging.KafkaClient

	mu      sync.Mutex
	pending map[string]*postgres.Solution
}

func newPipeline(address string, logger *log.Logger, db *database.Manager, kafka *messaging.KafkaClient) *pipeline {
	return &pipeline{
		address: address,
		logger:  logger.WithComponent("pipeline"),
		db:      db,
		kafka:   kafka,
		pending: make(map[string]*postgres.Solution),
	}
}

func pendingKey(challengeID, nonce string) string {
	return challengeID + "/" + nonce
}

// SolutionFound persists and publishes a qualifying nonce.
func (p *pipeline) SolutionFound(ctx context.Context, c *challenge.Challenge, nonce, hash string) {
	sol := &postgres.Solution{
		Address:     p.address,
		ChallengeID: c.ID,
		Nonce:       nonce,
		Hash:        hash,
		Difficulty:  c.Difficulty,
		FoundAt:     time.Now(),
	}

	if p.db != nil {
		if err := p.db.RecordSolution(ctx, sol); err != nil {
			p.logger.WithError(err).Error("failed to persist solution", "challenge_id", c.ID)
		}
	}

	p.mu.Lock()
	p.pending[pendingKey(c.ID, nonce)] = sol
	p.mu.Unlock()

	if p.kafka != nil {
		event := messaging.SolutionFoundEvent{
			Address:     p.address,
			ChallengeID: c.ID,
			Nonce:       nonce,
			Hash:        hash,
			Difficulty:  c.Difficulty,
			FoundAt:     sol.FoundAt,
		}
		if err := p.kafka.PublishEvent(ctx, messaging.TopicSolutions, c.ID, event); err != nil {
			p.logger.WithError(err).Error("failed to publish solution event", "challenge_id", c.ID)
		}
	}
}

// SubmissionFinished records the terminal outcome for a previously found
// solution.
func (p *pipeline) SubmissionFinished(ctx context.Context, c *challenge.Challenge, nonce string, outcome submit.Outcome) {
	p.mu.Lock()
	sol := p.pending[pendingKey(c.ID, nonce)]
	delete(p.pending, pendingKey(c.ID, nonce))
	p.mu.Unlock()

	if p.db != nil {
		if sol == nil {
			sol = &postgres.Solution{Address: p.address, ChallengeID: c.ID, Nonce: nonce}
		}
		if err := p.db.RecordSubmission(ctx, sol, outcome.Accepted, outcome.Attempts, outcome.LastStatus); err != nil {
			p.logger.WithError(err).Error("failed to record submission outcome", "challenge_id", c.ID)
		}
	}

	if p.kafka != nil {
		event := messaging.SubmissionResultEvent{
			Address:     p.address,
			ChallengeID: c.ID,
			Nonce:       nonce,
			Accepted:    outcome.Accepted,
			Attempts:    outcome.Attempts,
			LastStatus:  outcome.LastStatus,
			FinishedAt:  time.Now(),
		}
		if err := p.kafka.PublishEvent(ctx, messaging.TopicSubmissions, c.ID, event); err != nil {
			p.logger.WithError(err).Error("failed to publish submission event", "challenge_id", c.ID)
		}
	}
}

// ChallengeFinished publishes a per-challenge run summary.
func (p *pipeline) ChallengeFinished(ctx context.Context, c *challenge.Challenge, hashes, solutions uint64) {
	if p.kafka == nil {
		return
	}
	event := messaging.ChallengeRunEvent{
		Address:     p.address,
		ChallengeID: c.ID,
		Hashes:      hashes,
		Solutions:   solutions,
		FinishedAt:  time.Now(),
	}
	if err := p.kafka.PublishEvent(ctx, messaging.TopicChallengeRuns, c.ID, event); err != nil {
		p.logger.WithError(err).Error("failed to publish challenge run event", "challenge_id", c.ID)
	}
}

// ReportHashrate mirrors a throughput observation to the metrics backends.
func (p *pipeline) ReportHashrate(ctx context.Context, challengeID string, hashes, solutions uint64, perSec float64) {
	if p.db != nil {
		p.db.RecordHashrate(ctx, p.address, challengeID, hashes, solutions, perSec)
	}
}

// IsCompleted consults the completed-challenge registry.
func (p *pipeline) IsCompleted(ctx context.Context, address, challengeID string) (bool, error) {
	if p.db == nil {
		return false, nil
	}
	return p.db.IsChallengeCompleted(ctx, address, challengeID)
}
