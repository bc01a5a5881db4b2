package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ideaforge/apperr"
)

// SearXNGClient queries a self-hosted SearXNG instance
type SearXNGClient struct {
	baseURL string
	client  *http.Client
}

var _ Searcher = (*SearXNGClient)(nil)

// NewSearXNGClient creates a client with the given timeout in seconds (default 30)
func NewSearXNGClient(baseURL string, timeout int) *SearXNGClient {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &SearXNGClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: t},
	}
}

type searxngResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		PublishedDate string  `json:"publishedDate"`
		Score         float64 `json:"score"`
	} `json:"results"`
}

// Search issues a JSON-format query
func (c *SearXNGClient) Search(ctx context.Context, req *Request) (*Response, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = "/search"

	q := u.Query()
	q.Set("q", req.Query)
	q.Set("format", "json")
	if req.Topic == "news" {
		q.Set("categories", "news")
	} else {
		q.Set("categories", "general")
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ideaforge/1.0)")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperr.New(apperr.UpstreamFailure, "searxng search", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, apperr.Errorf(apperr.UpstreamFailure, "searxng api error (status %d): %s", res.StatusCode, string(body))
	}

	var parsed searxngResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.New(apperr.UpstreamFailure, "searxng decode", err)
	}

	limit := len(parsed.Results)
	if req.MaxResults > 0 && req.MaxResults < limit {
		limit = req.MaxResults
	}

	out := &Response{Results: make([]Result, 0, limit)}
	for _, r := range parsed.Results[:limit] {
		out.Results = append(out.Results, Result{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		})
	}
	return out, nil
}
