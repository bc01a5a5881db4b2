package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"ideaforge/apperr"
	"ideaforge/config"

	readability "github.com/go-shiori/go-readability"
)

// Page is the readable part of a scraped web page
type Page struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Byline    string `json:"byline,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Scraper turns a URL into readable text
type Scraper interface {
	Scrape(ctx context.Context, pageURL string) (*Page, error)
}

// ReadabilityScraper fetches pages over HTTP and extracts the main content
// with go-readability
type ReadabilityScraper struct {
	client   *http.Client
	maxChars int
}

// NewReadabilityScraper creates a scraper. A nil client gets the default
// scrape timeout.
func NewReadabilityScraper(client *http.Client, maxChars int) *ReadabilityScraper {
	if client == nil {
		client = &http.Client{Timeout: config.ScrapeTimeout}
	}
	if maxChars <= 0 {
		maxChars = config.MaxScrapedChars
	}
	return &ReadabilityScraper{client: client, maxChars: maxChars}
}

// Scrape downloads pageURL and returns its readable text, truncated to the
// configured number of characters
func (s *ReadabilityScraper) Scrape(ctx context.Context, pageURL string) (*Page, error) {
	parsed, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, apperr.Errorf(apperr.Validation, "invalid url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "scrape", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ideaforge/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.UpstreamFailure, "scrape", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.UpstreamFailure, "scrape",
			fmt.Errorf("%s returned status %d", parsed.Host, resp.StatusCode))
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return nil, apperr.New(apperr.UpstreamFailure, "scrape", fmt.Errorf("readability extraction failed: %w", err))
	}

	text, truncated := truncateRunes(strings.TrimSpace(article.TextContent), s.maxChars)
	return &Page{
		URL:       parsed.String(),
		Title:     article.Title,
		Byline:    article.Byline,
		Excerpt:   article.Excerpt,
		Text:      text,
		Truncated: truncated,
	}, nil
}

func truncateRunes(s string, max int) (string, bool) {
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:max]), true
}
