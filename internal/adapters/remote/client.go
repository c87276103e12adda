package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxResponseSize bounds how much of the response body is read
const maxResponseSize = 4 << 20

// ClassifyRequest is the body posted to the classification API
type ClassifyRequest struct {
	EmailText string `json:"email_text"`
}

// ClassifyResponse is the body returned by the classification API
type ClassifyResponse struct {
	Analysis *string `json:"analysis"`
}

// Client calls a remote classification API over HTTP
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new remote classification client
func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("remote_classifier"),
	}
}

// Analyze posts the email text and returns the "analysis" field of the response
func (c *Client) Analyze(ctx context.Context, emailText string) (string, error) {
	payload, err := json.Marshal(ClassifyRequest{EmailText: emailText})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Classification API responded",
		zap.String("endpoint", c.endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("API request failed: %d", resp.StatusCode)
	}

	var body ClassifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode API response: %w", err)
	}
	if body.Analysis == nil {
		return "", fmt.Errorf("API response is missing the analysis field")
	}

	return *body.Analysis, nil
}
