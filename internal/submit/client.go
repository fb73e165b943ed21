// Package submit reports found solutions to the remote scavenger service.
package submit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/scvgr/scavd/internal/errlog"
	"github.com/scvgr/scavd/pkg/errors"
	"github.com/scvgr/scavd/pkg/log"
	"github.com/scvgr/scavd/pkg/retry"
)

// maxBodyBytes bounds how much of a response body is read for logging.
const maxBodyBytes = 4096

// Outcome is the terminal result of the submission protocol for one nonce.
type Outcome struct {
	Accepted   bool
	Attempts   int
	LastStatus int
	LastBody   string
}

// Client posts solutions to the remote endpoint and classifies the result.
// Only HTTP 201 is success; any other status or request-level failure is a
// failed attempt, recorded in the error log and retried up to the attempt
// cap with fixed spacing.
type Client struct {
	baseURL     string
	address     string
	httpClient  *http.Client
	retryConfig *retry.Config
	errlog      *errlog.Recorder
	logger      *log.Logger
}

// NewClient creates a submission client for one address.
func NewClient(baseURL, address string, timeout time.Duration, rec *errlog.Recorder, logger *log.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		address:     address,
		httpClient:  &http.Client{Timeout: timeout},
		retryConfig: retry.SubmissionConfig(),
		errlog:      rec,
		logger:      logger.WithComponent("submit"),
	}
}

// solutionURL builds the endpoint path for one solution.
func (c *Client) solutionURL(challengeID, nonce string) string {
	return fmt.Sprintf("%s/solution/%s/%s/%s", c.baseURL, c.address, challengeID, nonce)
}

// post performs a single submission attempt.
func (c *Client) post(ctx context.Context, challengeID, nonce string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.solutionURL(challengeID, nonce), strings.NewReader("{}"))
	if err != nil {
		return 0, "", errors.Wrap(err, errors.ErrorTypeInternal, "post_solution",
			"failed to build submission request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		serr := errors.Wrap(err, errors.ErrorTypeSubmission, "post_solution",
			"submission request failed").
			WithContext("challenge_id", challengeID).
			WithContext("nonce", nonce)
		// Timeouts and transport failures all count as failed attempts; the
		// attempt cap is the only bound on retrying.
		serr.Retryable = true
		return 0, "", serr
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	return resp.StatusCode, strings.TrimSpace(string(body)), nil
}

// Submit drives the full submission protocol for one found nonce: up to 3
// attempts with a fixed 1 second delay between them. The outcome is returned
// rather than signaled through an error; exhausting the attempts without a
// 201 is a terminal condition the caller escalates so the valid nonce is not
// searched over and discarded.
func (c *Client) Submit(ctx context.Context, challengeID, nonce string) Outcome {
	outcome := Outcome{}

	err := retry.Do(ctx, c.retryConfig, func() error {
		outcome.Attempts++

		status, body, err := c.post(ctx, challengeID, nonce)
		if err != nil {
			c.logger.WithError(err).Warn("submission attempt failed",
				"challenge_id", challengeID,
				"nonce", nonce,
				"attempt", outcome.Attempts,
			)
			c.errlog.Record(c.address, challengeID, nonce, err.Error())
			return err
		}

		outcome.LastStatus = status
		outcome.LastBody = body
		c.logger.LogSubmissionAttempt(challengeID, nonce, outcome.Attempts, status, body)

		if status == http.StatusCreated {
			return nil
		}

		submitErr := errors.New(errors.ErrorTypeSubmission, "post_solution",
			fmt.Sprintf("unexpected status %d", status)).
			WithContext("body", body)
		c.errlog.Record(c.address, challengeID, nonce, submitErr.Error())
		return submitErr
	})

	outcome.Accepted = err == nil

	if outcome.Accepted {
		c.logger.Info("solution accepted",
			"challenge_id", challengeID,
			"nonce", nonce,
			"attempts", outcome.Attempts,
		)
	} else {
		c.logger.WithError(err).Error("submission attempts exhausted, halting search to preserve nonce",
			"challenge_id", challengeID,
			"nonce", nonce,
			"attempts", outcome.Attempts,
		)
	}

	return outcome
}
