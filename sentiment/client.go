package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"review-sentiment/models"
	"review-sentiment/utils"
)

const maxResponseBytes = 1 << 20

// Client calls the remote sentiment-scoring service.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	probeTimeout time.Duration
	logger       *utils.Logger
}

// NewClient creates a Client for the service at baseURL. requestTimeout
// bounds each scoring call; probeTimeout bounds the liveness probe.
func NewClient(baseURL string, requestTimeout, probeTimeout time.Duration, logger *utils.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: requestTimeout},
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type scoreRequest struct {
	Text  string       `json:"text"`
	Model models.Model `json:"model"`
}

type scoreResponse struct {
	Texto       string   `json:"texto"`
	Modelo      string   `json:"modelo"`
	Score       *float64 `json:"score"`
	Sentimiento string   `json:"sentimiento"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Ping probes GET / and returns a *ConnectivityError unless the service
// answers 2xx within the probe timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return &ConnectivityError{URL: c.baseURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("[sentiment] Probe of %s failed: %v", c.baseURL, err)
		return &ConnectivityError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("[sentiment] Probe of %s answered %s", c.baseURL, resp.Status)
		return &ConnectivityError{URL: c.baseURL, Err: fmt.Errorf("status %s", resp.Status)}
	}

	c.logger.Debug("[sentiment] Service at %s is up", c.baseURL)
	return nil
}

// Connected reports whether Ping succeeds.
func (c *Client) Connected(ctx context.Context) bool {
	return c.Ping(ctx) == nil
}

// Score sends one text for scoring under one model.
func (c *Client) Score(ctx context.Context, text string, model models.Model) (models.SentimentResult, error) {
	fail := func(err error, format string, args ...any) (models.SentimentResult, error) {
		return models.SentimentResult{}, &ScoringError{Model: model, Cause: fmt.Sprintf(format, args...), Err: err}
	}

	body, err := json.Marshal(scoreRequest{Text: text, Model: model})
	if err != nil {
		return fail(err, "encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sentiment", bytes.NewReader(body))
	if err != nil {
		return fail(err, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(err, "request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fail(err, "read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return fail(nil, "%s", e.Error)
		}
		return fail(nil, "status %s", resp.Status)
	}

	var out scoreResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fail(err, "decode response: %v", err)
	}
	if out.Score == nil {
		return fail(nil, "response has no score")
	}
	label, err := models.ParseLabel(out.Sentimiento)
	if err != nil {
		return fail(err, "%v", err)
	}

	return models.SentimentResult{
		Text:  text,
		Model: model,
		Score: *out.Score,
		Label: label,
	}, nil
}
