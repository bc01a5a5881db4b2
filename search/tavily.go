package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ideaforge/apperr"
)

const tavilyURL = "https://api.tavily.com/search"

// TavilyClient talks to the Tavily search API
type TavilyClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

var _ Searcher = (*TavilyClient)(nil)

// NewTavilyClient creates a Tavily client. A nil httpClient uses http.DefaultClient.
func NewTavilyClient(apiKey string, httpClient *http.Client) *TavilyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TavilyClient{apiKey: apiKey, endpoint: tavilyURL, client: httpClient}
}

type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	Topic       string `json:"topic,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

// Search runs a basic-depth query
func (c *TavilyClient) Search(ctx context.Context, req *Request) (*Response, error) {
	body := tavilyRequest{
		Query:       req.Query,
		SearchDepth: "basic",
		Topic:       req.Topic,
		MaxResults:  req.MaxResults,
	}
	if body.Topic == "" {
		body.Topic = "general"
	}
	if body.MaxResults == 0 {
		body.MaxResults = 5
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperr.New(apperr.UpstreamFailure, "tavily search", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperr.New(apperr.UpstreamFailure, "tavily search", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, apperr.Errorf(apperr.UpstreamFailure, "tavily api error (status %d): %s", res.StatusCode, string(raw))
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, apperr.New(apperr.UpstreamFailure, "tavily decode", err)
	}

	out := &Response{Results: make([]Result, 0, len(parsed.Results))}
	for _, r := range parsed.Results {
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
