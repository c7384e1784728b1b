package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"libercare/types"
)

// ErrRefreshRunning is returned when the server already runs a refresh
var ErrRefreshRunning = errors.New("refresh already running")

// APIClient is a thin HTTP client for the LiberCare API
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client: &http.Client{
			// aggregation on a cold cache runs five searches
			Timeout: 60 * time.Second,
		},
	}
}

// ArticlesResponse is the JSON response of GET /api/articles
type ArticlesResponse struct {
	Language  types.Language  `json:"language"`
	FetchedAt time.Time       `json:"fetched_at"`
	Stale     bool            `json:"stale"`
	Count     int             `json:"count"`
	Articles  []types.Article `json:"articles"`
}

// SearchResponse is the JSON response of GET /api/search
type SearchResponse struct {
	Query    string               `json:"query"`
	Language types.Language       `json:"language"`
	Count    int                  `json:"count"`
	Results  []types.SearchResult `json:"results"`
}

// GetArticles fetches the recommended articles of lang
func (c *APIClient) GetArticles(ctx context.Context, lang types.Language) (*ArticlesResponse, error) {
	var out ArticlesResponse
	if err := c.getJSON(ctx, "/api/articles?lang="+url.QueryEscape(string(lang)), &out); err != nil {
		return nil, fmt.Errorf("failed to get articles: %w", err)
	}
	return &out, nil
}

// Search runs a keyword news search
func (c *APIClient) Search(ctx context.Context, query string, lang types.Language) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", string(lang))

	var out SearchResponse
	if err := c.getJSON(ctx, "/api/search?"+params.Encode(), &out); err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	return &out, nil
}

// GetStatus fetches the refresh status
func (c *APIClient) GetStatus(ctx context.Context) (*types.StatusResponse, error) {
	var out types.StatusResponse
	if err := c.getJSON(ctx, "/api/status", &out); err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return &out, nil
}

// Refresh asks the server to refresh lang and returns the run id
func (c *APIClient) Refresh(ctx context.Context, lang types.Language) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/refresh?lang="+url.QueryEscape(string(lang)), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to start refresh: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
	case http.StatusConflict:
		return "", ErrRefreshRunning
	default:
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		RunID string `json:"run_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.RunID, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
