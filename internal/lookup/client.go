package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client resolves process numbers against a court registry REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a registry client. baseURL is required.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve fetches the registry record for a process number.
func (c *Client) Resolve(ctx context.Context, number string) (*Case, error) {
	url := fmt.Sprintf("%s/api/v1/processos/%s", c.baseURL, number)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "APIKey "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup process %s: %w", number, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("lookup process %s: status %d: %s", number, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var c2 Case
	if err := json.NewDecoder(resp.Body).Decode(&c2); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	if c2.Number == "" {
		c2.Number = number
	}
	return &c2, nil
}
