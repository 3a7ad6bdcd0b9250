package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/guitardaily/internal/models"
)

// HTTPClient implements DataSource by calling the GuitarDaily REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The remote
// server decides the user, so the userID arguments are ignored.
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

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, payload any, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("httpclient: encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func limitParams(limit int) url.Values {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

func (c *HTTPClient) ListExercises(ctx context.Context, _ int) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := c.do(ctx, http.MethodGet, "/api/v1/exercises", nil, nil, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// ListAttempts treats limit <= 0 as "everything", which the REST API
// expresses as a very large limit.
func (c *HTTPClient) ListAttempts(ctx context.Context, _ int, limit int) ([]models.Attempt, error) {
	if limit <= 0 {
		limit = 1 << 30
	}
	var attempts []models.Attempt
	if err := c.do(ctx, http.MethodGet, "/api/v1/attempts", limitParams(limit), nil, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// InsertAttempt posts the attempt. The server assigns its own id and
// timestamp.
func (c *HTTPClient) InsertAttempt(ctx context.Context, _ int, a models.Attempt) (bool, error) {
	payload := map[string]any{
		"exerciseId": a.ExerciseID,
		"bpmUsed":    a.BPMUsed,
		"status":     a.Status,
		"notes":      a.Notes,
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/attempts", nil, payload, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (c *HTTPClient) ListSessions(ctx context.Context, _ int, limit int) ([]models.Session, error) {
	var sessions []models.Session
	if err := c.do(ctx, http.MethodGet, "/api/v1/sessions", limitParams(limit), nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// InsertSession asks the server to plan and store a session of the same
// length. Planning is deterministic for a catalog, so the stored items match
// s as long as the catalog did not change in between. An empty plan is not
// sent.
func (c *HTTPClient) InsertSession(ctx context.Context, _ int, s models.Session) (bool, error) {
	if s.TotalPlanned <= 0 {
		return false, nil
	}
	payload := map[string]int{"minutes": s.TotalPlanned}
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions", nil, payload, nil); err != nil {
		return false, err
	}
	return true, nil
}
