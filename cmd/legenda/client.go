package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"legenda/internal/deps"
	"legenda/internal/jobs"
)

// apiClient talks to a running legendad instance.
type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(address string) *apiClient {
	address = strings.TrimSpace(address)
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	return &apiClient{
		baseURL:    strings.TrimRight(address, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type daemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	JournalPath  string         `json:"journalPath"`
	Dependencies []deps.Status  `json:"dependencies"`
	Jobs         map[string]int `json:"jobs"`
}

func (c *apiClient) status(ctx context.Context) (*daemonStatus, error) {
	var payload daemonStatus
	if err := c.getJSON(ctx, "/api/status", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *apiClient) listJobs(ctx context.Context, limit int) ([]jobs.Job, error) {
	path := "/api/jobs"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var payload struct {
		Jobs []jobs.Job `json:"jobs"`
	}
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Jobs, nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("is legendad running? %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
