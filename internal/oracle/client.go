// Package oracle implements the client side of the hash daemon's
// line-delimited TCP protocol. Each worker owns one Client; a Client is
// never shared between workers.
package oracle

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/scvgr/scavd/pkg/errors"
)

// Client maintains one persistent connection to the local hash daemon.
// The connection is established lazily and discarded on any I/O failure;
// the next Exchange re-establishes it. Exchanges on a single Client are
// serialized.
type Client struct {
	addr    string
	timeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// NewClient creates a client for the daemon at host:port. No connection is
// made until the first Exchange.
func NewClient(host string, port string, timeout time.Duration) *Client {
	return &Client{
		addr:    net.JoinHostPort(host, port),
		timeout: timeout,
	}
}

// ensureConnected establishes the connection if absent. Callers must hold mu.
func (c *Client) ensureConnected() error {
	if c.conn != nil {
		return nil
	}

	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeNetwork, "oracle_connect",
			"failed to connect to hash daemon").
			WithContext("addr", c.addr)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// drop discards the connection so the next Exchange reconnects.
// Callers must hold mu.
func (c *Client) drop() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.reader = nil
}

// Exchange writes the payload as one line and reads one line back, returning
// its content with surrounding whitespace trimmed (expected: a hex-encoded
// hash). Any I/O error, timeout, or peer close invalidates the connection
// and is returned as a transient error; the caller backs off briefly and the
// attempt does not count toward the hash rate.
func (c *Client) Exchange(payload string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnected(); err != nil {
		return "", err
	}

	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		c.drop()
		return "", errors.Wrap(err, errors.ErrorTypeOracle, "oracle_exchange",
			"failed to set connection deadline")
	}

	if _, err := c.conn.Write([]byte(payload + "\n")); err != nil {
		c.drop()
		return "", errors.Wrap(err, errors.ErrorTypeOracle, "oracle_exchange",
			"failed to write payload to hash daemon")
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		// Includes timeouts and daemon-closed-connection conditions.
		c.drop()
		return "", errors.Wrap(err, errors.ErrorTypeOracle, "oracle_exchange",
			"failed to read response from hash daemon")
	}

	return strings.TrimSpace(line), nil
}

// Close tears down the connection. The client remains usable; a later
// Exchange reconnects.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.conn != nil {
		err = c.conn.Close()
	}
	c.conn = nil
	c.reader = nil
	return err
}
