// Package webhook sends parse reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccollicutt/lrcparse/pkg/config"
	"github.com/ccollicutt/lrcparse/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = config.DefaultWebhookTimeout

// UserAgent identifies webhook requests.
const UserAgent = "lrcparse-webhook"

// ResultHeader carries the run outcome so receivers can route a report
// without decoding its body.
const ResultHeader = "X-Lrcparse-Result"

const maxResponseBody = 1 << 20

// Client sends parse reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new webhook client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts a parse report to a webhook endpoint.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}
	defer func() { resp.Duration = time.Since(start) }()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := newRequest(ctx, report, opts)
	if err != nil {
		resp.Error = err
		return resp
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("posting report: %w", err)
		return resp
	}
	defer httpResp.Body.Close()

	resp.StatusCode = httpResp.StatusCode
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	resp.Body = string(body)
	switch {
	case err != nil:
		resp.Error = fmt.Errorf("reading response: %w", err)
	case resp.StatusCode >= 400:
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp
}

// newRequest encodes report as the JSON body of a POST to opts.URL.
func newRequest(ctx context.Context, report *output.Report, opts SendOptions) (*http.Request, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(ResultHeader, Result(report))
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}
	return req, nil
}

// Result labels a report for the ResultHeader: "failed" when any input was
// not LRC or could not be read, "ok" otherwise.
func Result(report *output.Report) string {
	if report.HasFailures() {
		return "failed"
	}
	return "ok"
}

// ShouldFire reports whether a webhook with the given trigger fires for a
// run that did or did not have failures.
func ShouldFire(trigger config.WebhookTrigger, hasFailures bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasFailures
	}
}

// Notify sends report to every webhook whose trigger fires.
// Failures are logged and never returned: a webhook cannot fail a run.
// It returns the number of webhooks that accepted the report.
func (c *Client) Notify(ctx context.Context, hooks []config.WebhookConfig, report *output.Report, logger logrus.FieldLogger) int {
	sent := 0
	for _, wh := range hooks {
		if !ShouldFire(wh.Trigger, report.HasFailures()) {
			continue
		}

		resp := c.Send(ctx, report, SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout.Std(),
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		entry := logger.WithFields(logrus.Fields{
			"webhook":  name,
			"result":   Result(report),
			"duration": resp.Duration,
		})
		if resp.Success() {
			sent++
			entry.WithField("status", resp.StatusCode).Info("webhook sent")
		} else {
			entry.WithError(resp.Error).Warn("webhook failed")
		}
	}
	return sent
}
