// Package client talks to the compliance backend that owns overlay
// suggestions: listing them for a project and recording decisions.
package client

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

	"github.com/WSG23/overlayreview/internal/types"
)

const maxBodyBytes = 32 << 20

// APIError is a non-2xx backend response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, body)
}

// Client is a backend API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout (default 15s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend URL is empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) suggestionsURL(projectID string) string {
	return fmt.Sprintf("%s/api/v1/projects/%s/overlay-suggestions", c.baseURL, url.PathEscape(projectID))
}

// ListSuggestions fetches every overlay suggestion for a project. The backend
// may answer with a bare array or an object carrying an "items" array.
func (c *Client) ListSuggestions(ctx context.Context, projectID string) ([]types.Suggestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.suggestionsURL(projectID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("listing suggestions for %s: %w", projectID, err)
	}
	list, err := DecodeSuggestions(body)
	if err != nil {
		return nil, fmt.Errorf("decoding suggestions for %s: %w", projectID, err)
	}
	return list, nil
}

// Decide records a verdict for one suggestion.
func (c *Client) Decide(ctx context.Context, projectID string, suggestionID int64, d types.Decision) error {
	payload, err := json.Marshal(map[string]string{"decision": string(d)})
	if err != nil {
		return err
	}
	u := c.suggestionsURL(projectID) + "/" + strconv.FormatInt(suggestionID, 10) + "/decision"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("deciding suggestion %d: %w", suggestionID, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// DecodeSuggestions parses a suggestion list from either a JSON array or an
// object with an "items" (or "suggestions") array.
func DecodeSuggestions(data []byte) ([]types.Suggestion, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []types.Suggestion{}, nil
	}
	if data[0] == '[' {
		var list []types.Suggestion
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var envelope struct {
		Items       []types.Suggestion `json:"items"`
		Suggestions []types.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if envelope.Items != nil {
		return envelope.Items, nil
	}
	if envelope.Suggestions != nil {
		return envelope.Suggestions, nil
	}
	return []types.Suggestion{}, nil
}
