// Package tools exposes search, scraping and artifact access to agents as
// eino tools.
package tools

import (
	"context"
	"errors"
	"fmt"

	"ideaforge/apperr"
	"ideaforge/artifact"
	"ideaforge/logger"
	"ideaforge/search"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
)

// Tool names as the model sees them
const (
	WebSearch     = "web_search"
	ScrapeWebsite = "scrape_website"
	ReadArtifact  = "read_artifact"
)

// SearchInput is the argument object of web_search
type SearchInput struct {
	Query string `json:"query" jsonschema_description:"what to search the web for"`
	Topic string `json:"topic,omitempty" jsonschema_description:"either news or general, defaults to general"`
}

// SearchOutput is returned to the model by web_search
type SearchOutput struct {
	Results []search.Result `json:"results"`
	Error   string          `json:"error,omitempty"`
}

// ScrapeInput is the argument object of scrape_website
type ScrapeInput struct {
	URL string `json:"url" jsonschema_description:"absolute http or https URL of the page to read"`
}

// ScrapeOutput is returned to the model by scrape_website
type ScrapeOutput struct {
	Page  *Page  `json:"page,omitempty"`
	Error string `json:"error,omitempty"`
}

// ReadArtifactInput is the argument object of read_artifact
type ReadArtifactInput struct {
	Name string `json:"name" jsonschema_description:"artifact file name, for example ideas.md or market.md"`
}

// ReadArtifactOutput is returned to the model by read_artifact
type ReadArtifactOutput struct {
	Name    string `json:"name"`
	Found   bool   `json:"found"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Toolbox builds session-bound tool sets from shared backends
type Toolbox struct {
	Searcher   search.Searcher
	Scraper    Scraper
	Store      artifact.Store
	MaxResults int
}

// Build returns the named tools, with read_artifact bound to session
func (b *Toolbox) Build(session string, names ...string) ([]tool.BaseTool, error) {
	out := make([]tool.BaseTool, 0, len(names))
	for _, name := range names {
		var (
			t   tool.InvokableTool
			err error
		)
		switch name {
		case WebSearch:
			t, err = NewWebSearchTool(b.Searcher, b.MaxResults)
		case ScrapeWebsite:
			t, err = NewScrapeTool(b.Scraper)
		case ReadArtifact:
			t, err = NewReadArtifactTool(b.Store, session)
		default:
			err = fmt.Errorf("unknown tool %q", name)
		}
		if err != nil {
			return nil, apperr.New(apperr.Internal, "build tools", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// NewWebSearchTool wraps a searcher. Backend failures are reported to the
// model in the result instead of aborting the agent run.
func NewWebSearchTool(s search.Searcher, maxResults int) (tool.InvokableTool, error) {
	if s == nil {
		return nil, errors.New("web_search needs a searcher")
	}
	return utils.InferTool(WebSearch,
		"Search the web for recent information about companies, markets, competitors and funding.",
		func(ctx context.Context, in SearchInput) (SearchOutput, error) {
			topic := in.Topic
			if topic != "news" {
				topic = "general"
			}
			resp, err := s.Search(ctx, &search.Request{Query: in.Query, Topic: topic, MaxResults: maxResults})
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return SearchOutput{}, ctxErr
				}
				logger.Log.Warnf("web_search %q failed: %v", in.Query, err)
				return SearchOutput{Error: err.Error()}, nil
			}
			return SearchOutput{Results: resp.Results}, nil
		})
}

// NewScrapeTool wraps a scraper
func NewScrapeTool(s Scraper) (tool.InvokableTool, error) {
	if s == nil {
		return nil, errors.New("scrape_website needs a scraper")
	}
	return utils.InferTool(ScrapeWebsite,
		"Read the main text content of a web page.",
		func(ctx context.Context, in ScrapeInput) (ScrapeOutput, error) {
			page, err := s.Scrape(ctx, in.URL)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ScrapeOutput{}, ctxErr
				}
				logger.Log.Warnf("scrape_website %s failed: %v", in.URL, err)
				return ScrapeOutput{Error: err.Error()}, nil
			}
			return ScrapeOutput{Page: page}, nil
		})
}

// NewReadArtifactTool reads artifacts of one session only
func NewReadArtifactTool(store artifact.Store, session string) (tool.InvokableTool, error) {
	if store == nil {
		return nil, errors.New("read_artifact needs a store")
	}
	return utils.InferTool(ReadArtifact,
		fmt.Sprintf("Read a document produced by an earlier analysis step. Available names: %v.", artifact.Names),
		func(ctx context.Context, in ReadArtifactInput) (ReadArtifactOutput, error) {
			out := ReadArtifactOutput{Name: in.Name}
			content, err := store.Read(ctx, session, in.Name)
			switch apperr.Classify(err) {
			case apperr.Internal:
				if err != nil {
					return out, err
				}
				out.Found = true
				out.Content = content
			case apperr.UpstreamTimeout:
				return out, err
			default:
				out.Error = err.Error()
			}
			return out, nil
		})
}
