// Package pipeline runs the four idea-analysis stages. Stages hand their output
// to later stages through session-scoped artifacts, or through a Context when
// the whole chain runs in one call.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ideaforge/agent"
	"ideaforge/apperr"
	"ideaforge/artifact"
	"ideaforge/config"
	"ideaforge/events"
	"ideaforge/logger"

	"github.com/cloudwego/eino/components/tool"
	"golang.org/x/sync/errgroup"
)

// ToolBuilder produces the tools a stage may use, bound to one session
type ToolBuilder interface {
	Build(session string, names ...string) ([]tool.BaseTool, error)
}

// Deps are the collaborators a Service needs. All of them are built by the
// caller.
type Deps struct {
	Runner       agent.Runner
	Tools        ToolBuilder
	Store        artifact.Store
	Publisher    events.Publisher
	StageTimeout time.Duration
}

// Context carries stage outputs through an in-process run
type Context struct {
	Idea       string
	SessionID  string
	Validation string
	Market     string
	Strategy   string
	Funding    string
}

// Service executes stages
type Service struct {
	deps  Deps
	locks *sessionLocks
}

// NewService validates deps and fills defaults
func NewService(deps Deps) (*Service, error) {
	if deps.Runner == nil {
		return nil, fmt.Errorf("pipeline: runner is required")
	}
	if deps.Tools == nil {
		return nil, fmt.Errorf("pipeline: tool builder is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("pipeline: artifact store is required")
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	if deps.StageTimeout <= 0 {
		deps.StageTimeout = config.DefaultStageTimeout
	}
	return &Service{deps: deps, locks: newSessionLocks()}, nil
}

// RunStage runs one stage for idea in session, reading its upstream artifact
// from the store. Calls for the same session are serialized.
func (s *Service) RunStage(ctx context.Context, id StageID, idea, session string) (string, error) {
	stage, ok := Lookup(id)
	if !ok {
		return "", apperr.Errorf(apperr.Validation, "unknown stage %q", id)
	}
	if err := checkInput(session); err != nil {
		return "", err
	}

	unlock := s.locks.lock(session)
	defer unlock()

	up := s.loadUpstream(ctx, stage, session)
	return s.run(ctx, stage, idea, session, up)
}

// RunAll runs every stage in order and passes outputs through pc. Strategy
// and fund distribution only depend on the market report, so they run
// concurrently.
func (s *Service) RunAll(ctx context.Context, idea, session string) (*Context, error) {
	if err := checkInput(session); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(session)
	defer unlock()

	pc := &Context{Idea: idea, SessionID: session}
	var err error

	validate, _ := Lookup(Validate)
	if pc.Validation, err = s.run(ctx, validate, idea, session, Upstream{}); err != nil {
		return nil, fmt.Errorf("%s: %w", Validate, err)
	}

	market, _ := Lookup(Market)
	if pc.Market, err = s.run(ctx, market, idea, session, provided(market, pc.Validation)); err != nil {
		return nil, fmt.Errorf("%s: %w", Market, err)
	}

	strategy, _ := Lookup(Strategy)
	funding, _ := Lookup(Funding)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.run(gctx, strategy, idea, session, provided(strategy, pc.Market))
		if err != nil {
			return fmt.Errorf("%s: %w", Strategy, err)
		}
		pc.Strategy = out
		return nil
	})
	g.Go(func() error {
		out, err := s.run(gctx, funding, idea, session, provided(funding, pc.Market))
		if err != nil {
			return fmt.Errorf("%s: %w", Funding, err)
		}
		pc.Funding = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pc, nil
}

// Artifact returns the stored artifact name for session
func (s *Service) Artifact(ctx context.Context, session, name string) (string, error) {
	return s.deps.Store.Read(ctx, session, name)
}

func (s *Service) run(ctx context.Context, stage Stage, idea, session string, up Upstream) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.deps.StageTimeout)
	defer cancel()

	start := time.Now()
	log := logger.Log.WithField("stage", stage.ID).WithField("session", session)
	log.Infof("running stage (upstream %q available=%v)", up.Name, up.Available)

	toolset, err := s.deps.Tools.Build(session, stage.Tools...)
	if err != nil {
		return "", err
	}

	spec, task := stage.prompt(idea, up)
	raw, err := s.deps.Runner.Run(ctx, spec, task, toolset)
	if err != nil {
		log.Errorf("agent failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return "", err
	}
	out := strings.TrimSpace(raw)

	// a sibling stage in RunAll may have failed while this one was running
	if err := ctx.Err(); err != nil {
		log.Warnf("dropping %s: %v", stage.Artifact, err)
		return "", err
	}
	if err := s.deps.Store.Write(ctx, session, stage.Artifact, out); err != nil {
		return "", fmt.Errorf("write %s: %w", stage.Artifact, err)
	}
	log.Infof("wrote %s (%d bytes) in %s", stage.Artifact, len(out), time.Since(start).Round(time.Millisecond))

	evt := events.Event{
		Type:      events.ArtifactWritten,
		SessionID: session,
		Stage:     string(stage.ID),
		Artifact:  stage.Artifact,
		Bytes:     len(out),
	}
	if err := s.deps.Publisher.Publish(ctx, evt); err != nil {
		log.Warnf("publish %s event: %v", evt.Type, err)
	}
	return out, nil
}

// loadUpstream reads the stage's input artifact. A missing or unreadable
// artifact is logged and reported as unavailable.
func (s *Service) loadUpstream(ctx context.Context, stage Stage, session string) Upstream {
	if stage.Reads == "" {
		return Upstream{}
	}
	up := Upstream{Name: stage.Reads}
	content, err := s.deps.Store.Read(ctx, session, stage.Reads)
	if err != nil {
		logger.Log.WithField("stage", stage.ID).Warnf("upstream %s unavailable for session %s: %v", stage.Reads, session, err)
		return up
	}
	up.Content = content
	up.Available = true
	return up
}

func provided(stage Stage, content string) Upstream {
	return Upstream{Name: stage.Reads, Content: content, Available: true}
}

func checkInput(session string) error {
	if !artifact.ValidSession(session) {
		return apperr.Errorf(apperr.Validation, "invalid session id %q", session)
	}
	return nil
}
