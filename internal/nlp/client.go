package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the response-engine REST service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates an NLP engine client. baseURL is required.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

type respondRequest struct {
	Text string `json:"text"`
}

type respondResponse struct {
	Reply      string  `json:"reply"`
	Confidence float64 `json:"confidence"`
}

// Respond asks the engine for a reply to free text.
func (c *Client) Respond(ctx context.Context, text string) (string, float64, error) {
	var out respondResponse
	if err := c.post(ctx, "/v1/respond", respondRequest{Text: text}, &out); err != nil {
		return "", 0, err
	}
	return out.Reply, out.Confidence, nil
}

// FindStatements looks up previously seen statements by exact text. Used to
// recover stable question/response identifiers for the feedback path.
func (c *Client) FindStatements(ctx context.Context, text string) ([]Statement, error) {
	var out struct {
		Statements []Statement `json:"statements"`
	}
	if err := c.post(ctx, "/v1/statements/search", respondRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return out.Statements, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal nlp request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build nlp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("nlp engine %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("nlp engine %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode nlp response: %w", err)
	}
	return nil
}
