// Package influx records time-series metrics for miner throughput and
// solution discovery.
package influx

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Client wraps InfluxDB operations for time-series metrics
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	bucket   string
	org      string
}

// Config holds InfluxDB connection configuration
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// NewClient creates a new InfluxDB client
func NewClient(cfg *Config) (*Client, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check InfluxDB health: %w", err)
	}

	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return nil, fmt.Errorf("InfluxDB health check failed: %s", msg)
	}

	return &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		bucket:   cfg.Bucket,
		org:      cfg.Org,
	}, nil
}

// Close flushes pending writes and closes the connection.
func (c *Client) Close() {
	c.writeAPI.Flush()
	c.client.Close()
}

// Health checks InfluxDB connectivity
func (c *Client) Health(ctx context.Context) error {
	health, err := c.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to check health: %w", err)
	}

	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("health check failed: %s", msg)
	}

	return nil
}

// Flush forces buffered points out.
func (c *Client) Flush() {
	c.writeAPI.Flush()
}

// WriteHashratePoint writes one throughput observation.
func (c *Client) WriteHashratePoint(address, challengeID string, hashes, solutions uint64, perSec float64) {
	tags := map[string]string{
		"address":      address,
		"challenge_id": challengeID,
	}

	fields := map[string]interface{}{
		"hashes":     int64(hashes),
		"solutions":  int64(solutions),
		"per_second": perSec,
	}

	point := write.NewPoint("hashrate", tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WriteSolutionPoint records a found solution.
func (c *Client) WriteSolutionPoint(address, challengeID, nonce string) {
	tags := map[string]string{
		"address":      address,
		"challenge_id": challengeID,
	}

	fields := map[string]interface{}{
		"nonce": nonce,
		"count": 1,
	}

	point := write.NewPoint("solutions", tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WriteSubmissionPoint records a terminal submission outcome.
func (c *Client) WriteSubmissionPoint(address, challengeID string, accepted bool, attempts, lastStatus int) {
	tags := map[string]string{
		"address":      address,
		"challenge_id": challengeID,
		"accepted":     fmt.Sprintf("%t", accepted),
	}

	fields := map[string]interface{}{
		"attempts":    attempts,
		"last_status": lastStatus,
		"count":       1,
	}

	point := write.NewPoint("submissions", tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
