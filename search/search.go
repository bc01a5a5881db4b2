package search

import "context"

// Searcher is implemented by every web search backend
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request is a backend-neutral search query
type Request struct {
	Query      string
	Topic      string // "news" or "general"
	MaxResults int
}

// Response holds the results of one query
type Response struct {
	Results []Result `json:"results"`
}

// Result is a single hit
type Result struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score,omitempty"`
	PublishedDate string  `json:"published_date,omitempty"`
}
