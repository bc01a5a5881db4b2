// Package app wires configuration into running HTTP services.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ideaforge/agent"
	"ideaforge/api"
	"ideaforge/artifact"
	"ideaforge/config"
	"ideaforge/events"
	"ideaforge/logger"
	"ideaforge/pipeline"
	"ideaforge/rssfeeds"
	"ideaforge/search"
	"ideaforge/tools"

	"github.com/cloudwego/eino/components/model"
)

const shutdownTimeout = 5 * time.Second

// Analysis is a ready-to-serve idea-analysis service
type Analysis struct {
	Handler http.Handler
	store   artifact.Store
	events  events.Publisher
}

// Close releases the artifact store and the event producer
func (a *Analysis) Close() error {
	return errors.Join(a.events.Close(), a.store.Close())
}

// BuildAnalysis creates the chat model from cfg and wires the service
func BuildAnalysis(ctx context.Context, cfg *config.Config) (*Analysis, error) {
	cm, err := agent.NewChatModel(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	return BuildAnalysisWithModel(ctx, cfg, cm)
}

// BuildAnalysisWithModel wires the service around an existing chat model
func BuildAnalysisWithModel(ctx context.Context, cfg *config.Config, cm model.ToolCallingChatModel) (*Analysis, error) {
	searcher, err := search.NewSearcher(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("search client init failed: %w", err)
	}

	store, err := artifact.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("artifact store init failed: %w", err)
	}

	publisher := newPublisher(cfg.Events)

	runner := agent.NewEinoRunner(cm, agent.NewLimiter(cfg.Concurrency), cfg.Pipeline.AgentMaxSteps)
	toolbox := &tools.Toolbox{
		Searcher:   searcher,
		Scraper:    tools.NewReadabilityScraper(nil, config.MaxScrapedChars),
		Store:      store,
		MaxResults: cfg.Search.MaxResults,
	}

	svc, err := pipeline.NewService(pipeline.Deps{
		Runner:       runner,
		Tools:        toolbox,
		Store:        store,
		Publisher:    publisher,
		StageTimeout: cfg.Pipeline.StageTimeout,
	})
	if err != nil {
		_ = publisher.Close()
		_ = store.Close()
		return nil, err
	}

	logger.Log.Infof("analysis service wired: model=%s storage=%s events=%v", cfg.LLM.Model, cfg.Storage.Backend, len(cfg.Events.Brokers) > 0)
	return &Analysis{
		Handler: api.NewAnalysisRouter(api.AnalysisDeps{Pipeline: svc}),
		store:   store,
		events:  publisher,
	}, nil
}

// BuildNews wires the news service
func BuildNews(cfg *config.Config) http.Handler {
	deps := api.NewsDeps{
		Fetcher:     rssfeeds.NewFetcher(&http.Client{Timeout: config.FeedTimeout}),
		Presets:     rssfeeds.FeedPresets,
		MaxArticles: config.MaxNewsArticles,
	}
	return api.NewNewsRouter(deps, cfg.Server.NewsOrigins)
}

// newPublisher returns a Kafka publisher when brokers are configured. A broker
// that cannot be reached disables events instead of failing start-up.
func newPublisher(cfg config.EventsConfig) events.Publisher {
	if len(cfg.Brokers) == 0 {
		return events.Nop{}
	}
	pub, err := events.NewKafkaPublisher(events.KafkaConfig{Brokers: cfg.Brokers, Topic: cfg.Topic})
	if err != nil {
		logger.Log.Warnf("failed to init kafka producer: %v (events disabled)", err)
		return events.Nop{}
	}
	logger.Log.Infof("publishing artifact events to %s on %v", cfg.Topic, cfg.Brokers)
	return pub
}

// Serve runs h on addr until ctx is cancelled, then shuts down gracefully
func Serve(ctx context.Context, name, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("%s listening on %s", name, addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s: %w", name, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Log.Infof("%s shutting down", name)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s shutdown: %w", name, err)
	}
	return nil
}

// Addr formats a listen address for port
func Addr(port int) string {
	return fmt.Sprintf(":%d", port)
}
