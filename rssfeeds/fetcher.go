package rssfeeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ideaforge/config"
	"ideaforge/types"

	"github.com/mmcdole/gofeed"
)

// publishedLayout is used when an entry carries no published date
const publishedLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Fetcher retrieves and cleans RSS/Atom feeds
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	now     func() time.Time
}

// NewFetcher builds a Fetcher. A nil client falls back to http.DefaultClient.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, timeout: config.FeedTimeout, now: time.Now}
}

// FetchNews retrieves the feed and returns at most maxCount cleaned articles in
// feed order. Fetch and parse failures are returned as errors. A feed with no
// entries yields an empty slice and no error.
func (f *Fetcher) FetchNews(ctx context.Context, feedURL string, maxCount int) ([]types.NewsArticle, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = f.client
	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	count := min(len(feed.Items), maxCount)
	articles := make([]types.NewsArticle, 0, count)
	for _, item := range feed.Items[:count] {
		articles = append(articles, f.toArticle(item))
	}
	return articles, nil
}

func (f *Fetcher) toArticle(item *gofeed.Item) types.NewsArticle {
	// Get description/summary
	summary := item.Description
	if summary == "" {
		summary = item.Content
	}

	article := types.NewsArticle{
		Title:     item.Title,
		Link:      item.Link,
		Published: item.Published,
		Summary:   CleanHTML(summary),
		Image:     ExtractImage(item),
	}

	if strings.TrimSpace(article.Title) == "" {
		article.Title = "No Title"
	}
	if article.Link == "" {
		article.Link = "#"
	}
	if article.Published == "" {
		article.Published = f.now().UTC().Format(publishedLayout)
	}
	return article
}
