package api

import (
	"context"
	"net/http"
	"time"

	"ideaforge/config"
	"ideaforge/logger"
	"ideaforge/rssfeeds"
	"ideaforge/types"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidSource = "Invalid news source. Please choose from Inc42 or The Economic Times Startups."
	msgNoArticles    = "No articles found. Please try again later."
	msgUnexpected    = "An unexpected error occurred while fetching news."
)

// NewsFetcher is satisfied by *rssfeeds.Fetcher
type NewsFetcher interface {
	FetchNews(ctx context.Context, feedURL string, maxCount int) ([]types.NewsArticle, error)
}

// NewsDeps wires the news handlers. Zero values fall back to the built-in
// presets and limits.
type NewsDeps struct {
	Fetcher     NewsFetcher
	Presets     map[string]string
	MaxArticles int
	Timeout     time.Duration
}

type newsHandler struct {
	fetcher     NewsFetcher
	presets     map[string]string
	maxArticles int
	timeout     time.Duration
}

func newNewsHandler(deps NewsDeps) *newsHandler {
	h := &newsHandler{
		fetcher:     deps.Fetcher,
		presets:     deps.Presets,
		maxArticles: deps.MaxArticles,
		timeout:     deps.Timeout,
	}
	if h.fetcher == nil {
		h.fetcher = rssfeeds.NewFetcher(nil)
	}
	if h.presets == nil {
		h.presets = rssfeeds.FeedPresets
	}
	if h.maxArticles <= 0 {
		h.maxArticles = config.MaxNewsArticles
	}
	if h.timeout <= 0 {
		h.timeout = config.FeedTimeout
	}
	return h
}

// RegisterNewsRoutes registers the news endpoints.
func RegisterNewsRoutes(r *gin.Engine, h *newsHandler) {
	g := r.Group("/news")
	g.GET("/", h.handleGetNews)
	g.GET("/sources", h.handleListSources)
}

// handleGetNews serves GET /news/?source=<name>
func (h *newsHandler) handleGetNews(c *gin.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Errorf("news handler panic: %v", rec)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": msgUnexpected})
		}
	}()

	source := c.DefaultQuery("source", config.DefaultNewsSource)
	feedURL, ok := rssfeeds.ResolveFeedURL(h.presets, source)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgInvalidSource})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	articles, err := h.fetcher.FetchNews(ctx, feedURL, h.maxArticles)
	if err != nil {
		logger.Log.WithField("source", source).Errorf("error fetching feed: %v", err)
		articles = nil
	}
	if len(articles) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNoArticles})
		return
	}
	if len(articles) > h.maxArticles {
		articles = articles[:h.maxArticles]
	}
	c.JSON(http.StatusOK, types.NewsResponse{News: articles})
}

func (h *newsHandler) handleListSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": rssfeeds.SourceNames(h.presets)})
}
