package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quiz-review-service/internal/domain"
)

// SubmitResponse is the endpoint's success body.
type SubmitResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ReviewID     string `json:"review_id"`
	TotalReviews int    `json:"total_reviews"`
}

// Client posts result records to the remote review log endpoint. One attempt
// per record, no retries; when disabled every Send is a silent no-op so the
// local flow is identical with and without a configured endpoint.
type Client struct {
	endpoint string
	enabled  bool
	client   *http.Client
}

func NewClient(endpoint string, enabled bool) *Client {
	return &Client{
		endpoint: endpoint,
		enabled:  enabled && endpoint != "",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send performs the single network write attempt for a record. Callers decide
// whether to detach or await it; failures here never alter local state.
func (c *Client) Send(ctx context.Context, rec domain.ReviewResult) error {
	if !c.enabled {
		return nil
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode review: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post review: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, payload)
	}

	var submitted SubmitResponse
	if err := json.Unmarshal(payload, &submitted); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !submitted.Success {
		return fmt.Errorf("endpoint rejected review: %s", submitted.Message)
	}
	return nil
}
