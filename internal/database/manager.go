// Package database coordinates the miner's optional storage backends:
// PostgreSQL for solution persistence, Redis for the completed-challenge
// registry, and InfluxDB for throughput metrics. Each backend is enabled
// independently; a nil section in the config disables it.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/scvgr/scavd/internal/database/influx"
	"github.com/scvgr/scavd/internal/database/postgres"
	"github.com/scvgr/scavd/internal/database/redis"
	"github.com/scvgr/scavd/pkg/circuit"
	"github.com/scvgr/scavd/pkg/errors"
	"github.com/scvgr/scavd/pkg/retry"
)

// hashrateWindow bounds how long Redis keeps hashrate samples.
const hashrateWindow = 10 * time.Minute

// Manager holds whichever backends are enabled. Fields for disabled
// backends are nil and every operation degrades accordingly.
type Manager struct {
	Postgres *postgres.Client
	Redis    *redis.Client
	Influx   *influx.Client

	Solutions *postgres.SolutionRepository

	circuitBreaker *circuit.Breaker
	retryConfig    *retry.Config
}

// Config holds configuration for the enabled backends. Nil disables.
type Config struct {
	Postgres *postgres.Config
	Redis    *redis.Config
	Influx   *influx.Config
}

// NewManager connects the enabled backends. A connection failure tears
// down whatever was already connected before returning.
func NewManager(cfg *Config) (*Manager, error) {
	m := &Manager{
		circuitBreaker: circuit.New(&circuit.Config{
			MaxFailures:     3,
			SuccessRequired: 2,
			Timeout:         30 * time.Second,
			ResetTimeout:    60 * time.Second,
		}),
		retryConfig: retry.DatabaseConfig(),
	}

	if cfg.Postgres != nil {
		pgClient, err := postgres.NewClient(cfg.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeDatabase, "postgres_connection",
				"failed to connect to PostgreSQL database")
		}
		m.Postgres = pgClient
		m.Solutions = postgres.NewSolutionRepository(pgClient.DB())
	}

	if cfg.Redis != nil {
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			wrapped := errors.Wrap(err, errors.ErrorTypeDatabase, "redis_connection",
				"failed to connect to Redis database")
			if closeErr := m.closeConnected(); closeErr != nil {
				return nil, wrapped.WithContext("cleanup_errors", closeErr.Error())
			}
			return nil, wrapped
		}
		m.Redis = redisClient
	}

	if cfg.Influx != nil {
		influxClient, err := influx.NewClient(cfg.Influx)
		if err != nil {
			wrapped := errors.Wrap(err, errors.ErrorTypeDatabase, "influx_connection",
				"failed to connect to InfluxDB database")
			if closeErr := m.closeConnected(); closeErr != nil {
				return nil, wrapped.WithContext("cleanup_errors", closeErr.Error())
			}
			return nil, wrapped
		}
		m.Influx = influxClient
	}

	return m, nil
}

func (m *Manager) closeConnected() error {
	var errs []error

	if m.Postgres != nil {
		if err := m.Postgres.Close(); err != nil {
			errs = append(errs, fmt.Errorf("PostgreSQL close error: %w", err))
		}
	}
	if m.Redis != nil {
		if err := m.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close error: %w", err))
		}
	}
	if m.Influx != nil {
		m.Influx.Close()
	}

	if len(errs) > 0 {
		return fmt.Errorf("database close errors: %v", errs)
	}
	return nil
}

// Close closes all enabled backends.
func (m *Manager) Close() error {
	return m.closeConnected()
}

// Health checks connectivity of every enabled backend.
func (m *Manager) Health(ctx context.Context) error {
	if m.Postgres != nil {
		if err := m.Postgres.Health(ctx); err != nil {
			return fmt.Errorf("PostgreSQL health check failed: %w", err)
		}
	}
	if m.Redis != nil {
		if err := m.Redis.Health(ctx); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	if m.Influx != nil {
		if err := m.Influx.Health(ctx); err != nil {
			return fmt.Errorf("InfluxDB health check failed: %w", err)
		}
	}
	return nil
}

// RecordSolution persists a found solution in PostgreSQL and mirrors it to
// InfluxDB. Persistence is the critical path; metrics are best effort.
func (m *Manager) RecordSolution(ctx context.Context, sol *postgres.Solution) error {
	if m.Solutions == nil {
		if m.Influx != nil {
			m.Influx.WriteSolutionPoint(sol.Address, sol.ChallengeID, sol.Nonce)
		}
		return nil
	}

	return m.circuitBreaker.Execute(ctx, func() error {
		return retry.Do(ctx, m.retryConfig, func() error {
			if err := m.Solutions.CreateSolution(ctx, sol); err != nil {
				return errors.Wrap(err, errors.ErrorTypeDatabase, "record_solution",
					"failed to store solution in PostgreSQL").
					WithContext("challenge_id", sol.ChallengeID).
					WithContext("nonce", sol.Nonce)
			}

			if m.Influx != nil {
				m.Influx.WriteSolutionPoint(sol.Address, sol.ChallengeID, sol.Nonce)
			}
			return nil
		})
	})
}

// RecordSubmission stores a terminal submission outcome and, when accepted,
// marks the challenge completed in Redis.
func (m *Manager) RecordSubmission(ctx context.Context, sol *postgres.Solution, accepted bool, attempts, lastStatus int) error {
	if m.Influx != nil {
		m.Influx.WriteSubmissionPoint(sol.Address, sol.ChallengeID, accepted, attempts, lastStatus)
	}

	if accepted && m.Redis != nil {
		if err := m.Redis.MarkChallengeCompleted(ctx, sol.Address, sol.ChallengeID); err != nil {
			// Non-critical: the rerun skip just will not fire.
			redisErr := errors.Wrap(err, errors.ErrorTypeDatabase, "redis_mark_completed",
				"failed to mark challenge completed in Redis (non-critical)")
			redisErr.Retryable = false
			fmt.Printf("Warning: %v\n", redisErr)
		}
	}

	if m.Solutions == nil || sol.ID == 0 {
		return nil
	}

	return m.circuitBreaker.Execute(ctx, func() error {
		return retry.Do(ctx, m.retryConfig, func() error {
			if err := m.Solutions.RecordSubmission(ctx, sol.ID, accepted, attempts, lastStatus); err != nil {
				return errors.Wrap(err, errors.ErrorTypeDatabase, "record_submission",
					"failed to store submission outcome in PostgreSQL").
					WithContext("challenge_id", sol.ChallengeID).
					WithContext("solution_id", sol.ID)
			}
			return nil
		})
	})
}

// RecordHashrate mirrors a throughput observation to InfluxDB and Redis,
// both best effort.
func (m *Manager) RecordHashrate(ctx context.Context, address, challengeID string, hashes, solutions uint64, perSec float64) {
	if m.Influx != nil {
		m.Influx.WriteHashratePoint(address, challengeID, hashes, solutions, perSec)
	}
	if m.Redis != nil {
		if err := m.Redis.SetHashrate(ctx, address, perSec, hashrateWindow); err != nil {
			redisErr := errors.Wrap(err, errors.ErrorTypeDatabase, "redis_hashrate_update",
				"failed to update hashrate in Redis (non-critical)")
			redisErr.Retryable = false
			fmt.Printf("Warning: %v\n", redisErr)
		}
	}
}

// IsChallengeCompleted consults the Redis registry. Without Redis it always
// reports false.
func (m *Manager) IsChallengeCompleted(ctx context.Context, address, challengeID string) (bool, error) {
	if m.Redis == nil {
		return false, nil
	}
	return m.Redis.IsChallengeCompleted(ctx, address, challengeID)
}
