package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/plancoach/internal/models"
	"github.com/claude/plancoach/internal/storage"
)

// HTTPClient implements DataSource by calling the PlanCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// workouts live on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	case resp.StatusCode/100 != 2:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, respBody)
	}

	return respBody, nil
}

func workoutPath(id string) string {
	return "/api/v1/workouts/" + url.PathEscape(id)
}

func (c *HTTPClient) List(ctx context.Context) ([]models.SavedWorkout, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, nil)
	if err != nil {
		return nil, err
	}

	var list []models.SavedWorkout
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return list, nil
}

func (c *HTTPClient) Get(ctx context.Context, id string) (*models.SavedWorkout, error) {
	body, err := c.do(ctx, http.MethodGet, workoutPath(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var w models.SavedWorkout
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &w, nil
}

func (c *HTTPClient) Scheduled(ctx context.Context, start, end time.Time) ([]models.SavedWorkout, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))

	body, err := c.do(ctx, http.MethodGet, "/api/v1/calendar", params, nil)
	if err != nil {
		return nil, err
	}

	var list []models.SavedWorkout
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("httpclient: decode calendar: %w", err)
	}
	return list, nil
}

func (c *HTTPClient) Schedule(ctx context.Context, id string, date time.Time) (models.SavedWorkout, error) {
	return c.post(ctx, workoutPath(id)+"/schedule", date)
}

func (c *HTTPClient) Complete(ctx context.Context, id string, at time.Time) (models.SavedWorkout, error) {
	return c.post(ctx, workoutPath(id)+"/complete", at)
}

func (c *HTTPClient) post(ctx context.Context, path string, date time.Time) (models.SavedWorkout, error) {
	req := map[string]string{"date": date.UTC().Format(time.RFC3339)}
	body, err := c.do(ctx, http.MethodPost, path, nil, req)
	if err != nil {
		return models.SavedWorkout{}, err
	}

	var w models.SavedWorkout
	if err := json.Unmarshal(body, &w); err != nil {
		return models.SavedWorkout{}, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return w, nil
}
