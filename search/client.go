package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"libercare/config"
	"libercare/types"
)

// ErrMissingAPIKey is returned before any network I/O when no API key is configured.
// It aliases the config sentinel so callers can check either with errors.Is.
var ErrMissingAPIKey = config.ErrMissingAPIKey

// Request describes one web search
type Request struct {
	Query    string
	Num      int
	NewsOnly bool
}

// Searcher runs a web search and returns raw results in provider order
type Searcher interface {
	Search(ctx context.Context, req Request) ([]types.SearchResult, error)
}

// StatusError reports a non-2xx response from the search provider
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search API returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Serper web search API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the search endpoint
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// NewClient creates a search client with the fixed request timeout
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    config.SearchURL,
		httpClient: &http.Client{Timeout: config.SearchTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchPayload struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	Tbm string `json:"tbm,omitempty"`
}

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Organic []organicResult `json:"organic"`
}

// Search posts the query and decodes the organic results
func (c *Client) Search(ctx context.Context, req Request) ([]types.SearchResult, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	payload := searchPayload{Q: req.Query, Num: req.Num}
	if req.NewsOnly {
		payload.Tbm = config.NewsScope
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("X-API-KEY", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(decoded.Organic))
	for _, item := range decoded.Organic {
		results = append(results, types.SearchResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

// IsStatus reports whether err is a StatusError with the given code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
