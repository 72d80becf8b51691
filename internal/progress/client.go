package progress

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
)

// Client talks to the progress service
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the service rooted at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch loads (and on first contact creates) the record for playerID
func (c *Client) Fetch(ctx context.Context, playerID string) (Progress, error) {
	q := url.Values{}
	q.Set("player_id", playerID)

	var p Progress
	err := c.do(ctx, http.MethodGet, "/api/progress?"+q.Encode(), nil, &p)
	return p, err
}

// Save reports one session result and returns the updated record
func (c *Client) Save(ctx context.Context, r Result) (Progress, error) {
	var p Progress
	err := c.do(ctx, http.MethodPost, "/api/progress", r, &p)
	return p, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrPlayerNotFound
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("progress API error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode progress: %w", err)
	}
	return nil
}
