package search

import (
	"fmt"

	"ideaforge/config"
)

// NewSearcher picks a backend from config. With no explicit provider, a Tavily
// key selects Tavily and a SearXNG URL selects SearXNG.
func NewSearcher(cfg config.SearchConfig) (Searcher, error) {
	provider := cfg.Provider
	if provider == "" {
		switch {
		case cfg.TavilyAPIKey != "":
			provider = "tavily"
		case cfg.SearXNGURL != "":
			provider = "searxng"
		default:
			return nil, fmt.Errorf("search provider not configured")
		}
	}

	switch provider {
	case "tavily":
		if cfg.TavilyAPIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return NewTavilyClient(cfg.TavilyAPIKey, nil), nil
	case "searxng":
		if cfg.SearXNGURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return NewSearXNGClient(cfg.SearXNGURL, cfg.SearXNGTimeout), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
