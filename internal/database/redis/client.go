// Package redis tracks which challenges an address has already solved and
// caches recent hashrate samples.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for the miner
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewClient creates a new Redis client
func NewClient(cfg *Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health checks Redis connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Completed challenges

func completedKey(address string) string {
	return fmt.Sprintf("completed:%s", address)
}

// MarkChallengeCompleted records that an address solved a challenge, so a
// rerun can skip it.
func (c *Client) MarkChallengeCompleted(ctx context.Context, address, challengeID string) error {
	if err := c.rdb.SAdd(ctx, completedKey(address), challengeID).Err(); err != nil {
		return fmt.Errorf("failed to mark challenge completed: %w", err)
	}
	return nil
}

// IsChallengeCompleted reports whether an address already solved a challenge.
func (c *Client) IsChallengeCompleted(ctx context.Context, address, challengeID string) (bool, error) {
	done, err := c.rdb.SIsMember(ctx, completedKey(address), challengeID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check completed challenge: %w", err)
	}
	return done, nil
}

// CompletedChallenges lists every challenge ID an address has solved.
func (c *Client) CompletedChallenges(ctx context.Context, address string) ([]string, error) {
	ids, err := c.rdb.SMembers(ctx, completedKey(address)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list completed challenges: %w", err)
	}
	return ids, nil
}

// Hashrate samples

// SetHashrate appends a hashrate sample for an address, trimming samples
// older than the window.
func (c *Client) SetHashrate(ctx context.Context, address string, hashrate float64, window time.Duration) error {
	key := fmt.Sprintf("hashrate:%s", address)
	timestamp := time.Now().Unix()

	member := &redis.Z{
		Score:  float64(timestamp),
		Member: hashrate,
	}

	pipe := c.rdb.Pipeline()
	pipe.ZAdd(ctx, key, *member)
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", timestamp-int64(window.Seconds())))
	pipe.Expire(ctx, key, window*2) // Keep data a bit longer than window

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set hashrate: %w", err)
	}

	return nil
}

// GetAverageHashrate calculates the average hashrate over a time window.
func (c *Client) GetAverageHashrate(ctx context.Context, address string, window time.Duration) (float64, error) {
	key := fmt.Sprintf("hashrate:%s", address)
	minScore := time.Now().Add(-window).Unix()

	values, err := c.rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", minScore),
		Max: "+inf",
	}).Result()

	if err != nil {
		return 0, fmt.Errorf("failed to get hashrate values: %w", err)
	}

	if len(values) == 0 {
		return 0, nil
	}

	var total float64
	for _, val := range values {
		if hashrate, err := strconv.ParseFloat(val, 64); err == nil {
			total += hashrate
		}
	}

	return total / float64(len(values)), nil
}
