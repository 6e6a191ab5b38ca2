package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/plancoach/internal/models"
	"github.com/claude/plancoach/internal/storage"
)

// Client sends workout exports to a PlanCoach server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the PlanCoach server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SendBatch POSTs workouts to the server's import endpoint.
// Retries up to 3 times with exponential backoff on failure. A 400 is not
// retried since the same body would be rejected again. Cancelling ctx aborts
// both the request in flight and any backoff wait.
func (c *Client) SendBatch(ctx context.Context, workouts []models.SavedWorkout) (storage.ImportResult, error) {
	var res storage.ImportResult

	data, err := json.Marshal(workouts)
	if err != nil {
		return res, fmt.Errorf("marshaling workouts: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.serverURL+"/api/v1/workouts/import", bytes.NewReader(data))
		if err != nil {
			return res, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			if err := json.Unmarshal(body, &res); err != nil {
				return res, fmt.Errorf("decoding import result: %w", err)
			}
			return res, nil
		case http.StatusBadRequest:
			return res, fmt.Errorf("import rejected: %s", body)
		}
		lastErr = fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
	}

	return res, fmt.Errorf("after 3 attempts: %w", lastErr)
}
