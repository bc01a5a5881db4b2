package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ideaforge/agent"
	"ideaforge/apperr"
	"ideaforge/artifact"
	"ideaforge/config"
	"ideaforge/events"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runCall struct {
	spec  agent.Spec
	task  agent.Task
	tools int
}

// fakeRunner answers with reply(spec) and records what it was asked
type fakeRunner struct {
	mu    sync.Mutex
	calls []runCall
	reply func(spec agent.Spec) (string, error)
}

func (f *fakeRunner) Run(ctx context.Context, spec agent.Spec, task agent.Task, tools []tool.BaseTool) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{spec: spec, task: task, tools: len(tools)})
	f.mu.Unlock()
	return f.reply(spec)
}

func (f *fakeRunner) callFor(role string) (runCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.spec.Role == role {
			return c, true
		}
	}
	return runCall{}, false
}

type fakeTools struct {
	mu    sync.Mutex
	built map[string][]string
}

func (f *fakeTools) Build(session string, names ...string) ([]tool.BaseTool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.built == nil {
		f.built = map[string][]string{}
	}
	f.built[session] = append(f.built[session], names...)
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestService(t *testing.T, runner agent.Runner, pub events.Publisher) (*Service, artifact.Store) {
	t.Helper()
	store, err := artifact.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc, err := NewService(Deps{Runner: runner, Tools: &fakeTools{}, Store: store, Publisher: pub})
	require.NoError(t, err)
	return svc, store
}

func echoRole(spec agent.Spec) (string, error) {
	return "  report by " + spec.Role + "\n", nil
}

func TestRunStage_TrimsAndWritesArtifact(t *testing.T) {
	for _, stage := range Stages {
		t.Run(string(stage.ID), func(t *testing.T) {
			runner := &fakeRunner{reply: func(agent.Spec) (string, error) { return "  X\n", nil }}
			pub := &recordingPublisher{}
			svc, store := newTestService(t, runner, pub)

			out, err := svc.RunStage(context.Background(), stage.ID, "AI meal planner", config.DefaultSession)
			require.NoError(t, err)
			assert.Equal(t, "X", out)

			stored, err := store.Read(context.Background(), config.DefaultSession, stage.Artifact)
			require.NoError(t, err)
			assert.Equal(t, "X", stored)

			require.Len(t, pub.events, 1)
			assert.Equal(t, events.ArtifactWritten, pub.events[0].Type)
			assert.Equal(t, stage.Artifact, pub.events[0].Artifact)
		})
	}
}

func TestRunStage_ReadsUpstreamArtifact(t *testing.T) {
	runner := &fakeRunner{reply: echoRole}
	svc, store := newTestService(t, runner, nil)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "s1", artifact.Market, "TAM is 4B USD"))

	_, err := svc.RunStage(ctx, Strategy, "AI meal planner", "s1")
	require.NoError(t, err)

	call, ok := runner.callFor("Strategic Advisor")
	require.True(t, ok)
	assert.Contains(t, call.task.Description, "TAM is 4B USD")
	assert.Contains(t, call.task.Description, "AI meal planner")
}

func TestRunStage_MissingUpstreamDoesNotFail(t *testing.T) {
	runner := &fakeRunner{reply: echoRole}
	svc, _ := newTestService(t, runner, nil)

	out, err := svc.RunStage(context.Background(), Funding, "AI meal planner", "fresh")
	require.NoError(t, err)
	assert.Equal(t, "report by Fund Distribution Specialist", out)

	call, _ := runner.callFor("Fund Distribution Specialist")
	assert.Contains(t, call.task.Description, "market.md is not available yet")
}

func TestRunStage_SessionIsolation(t *testing.T) {
	runner := &fakeRunner{reply: echoRole}
	svc, store := newTestService(t, runner, nil)
	ctx := context.Background()

	_, err := svc.RunStage(ctx, Validate, "idea A", "session-a")
	require.NoError(t, err)

	_, err = store.Read(ctx, "session-b", artifact.Ideas)
	assert.Equal(t, apperr.NotFound, apperr.Classify(err))

	_, err = svc.RunStage(ctx, Market, "idea B", "session-b")
	require.NoError(t, err)
	call, _ := runner.callFor("Market Analysis Specialist")
	assert.NotContains(t, call.task.Description, "report by Idea Validation Specialist")
}

func TestRunStage_InputValidation(t *testing.T) {
	svc, _ := newTestService(t, &fakeRunner{reply: echoRole}, nil)
	ctx := context.Background()

	_, err := svc.RunStage(ctx, Validate, "idea", "../../etc")
	assert.Equal(t, apperr.Validation, apperr.Classify(err))

	_, err = svc.RunStage(ctx, StageID("pitch-deck"), "idea", config.DefaultSession)
	assert.Equal(t, apperr.Validation, apperr.Classify(err))
}

func TestRunStage_BlankIdeaRuns(t *testing.T) {
	runner := &fakeRunner{reply: echoRole}
	svc, store := newTestService(t, runner, nil)

	out, err := svc.RunStage(context.Background(), Validate, "   ", config.DefaultSession)
	require.NoError(t, err)
	assert.Equal(t, "report by Idea Validation Specialist", out)

	stored, err := store.Read(context.Background(), config.DefaultSession, artifact.Ideas)
	require.NoError(t, err)
	assert.Equal(t, out, stored)
}

func TestRunStage_RunnerErrorKeepsKindAndSkipsWrite(t *testing.T) {
	runner := &fakeRunner{reply: func(agent.Spec) (string, error) {
		return "", apperr.New(apperr.UpstreamFailure, "agent", errors.New("model overloaded"))
	}}
	pub := &recordingPublisher{}
	svc, store := newTestService(t, runner, pub)

	_, err := svc.RunStage(context.Background(), Validate, "idea", config.DefaultSession)
	require.Error(t, err)
	assert.Equal(t, apperr.UpstreamFailure, apperr.Classify(err))

	_, err = store.Read(context.Background(), config.DefaultSession, artifact.Ideas)
	assert.Equal(t, apperr.NotFound, apperr.Classify(err))
	assert.Empty(t, pub.events)
}

func TestRunStage_Timeout(t *testing.T) {
	store, err := artifact.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc, err := NewService(Deps{Runner: runnerFunc(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), Tools: &fakeTools{}, Store: store, StageTimeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = svc.RunStage(context.Background(), Validate, "idea", config.DefaultSession)
	assert.Equal(t, apperr.UpstreamTimeout, apperr.Classify(err))
}

type runnerFunc func(ctx context.Context) (string, error)

func (f runnerFunc) Run(ctx context.Context, _ agent.Spec, _ agent.Task, _ []tool.BaseTool) (string, error) {
	return f(ctx)
}

func TestRunStage_PublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, _ := newTestService(t, &fakeRunner{reply: echoRole}, pub)

	out, err := svc.RunStage(context.Background(), Validate, "idea", config.DefaultSession)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRunStage_SerializesSameSession(t *testing.T) {
	var active, maxActive int32
	runner := runnerFunc(func(ctx context.Context) (string, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return "ok", nil
	})
	svc, _ := newTestService(t, runner, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RunStage(context.Background(), Validate, "idea", "same")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Equal(t, 0, svc.locks.size())
}

func TestRunAll_PassesOutputsThroughContext(t *testing.T) {
	runner := &fakeRunner{reply: echoRole}
	svc, store := newTestService(t, runner, nil)
	ctx := context.Background()

	pc, err := svc.RunAll(ctx, "AI meal planner", "run-1")
	require.NoError(t, err)

	assert.Equal(t, "run-1", pc.SessionID)
	assert.Equal(t, "report by Idea Validation Specialist", pc.Validation)
	assert.Equal(t, "report by Market Analysis Specialist", pc.Market)
	assert.Equal(t, "report by Strategic Advisor", pc.Strategy)
	assert.Equal(t, "report by Fund Distribution Specialist", pc.Funding)

	market, _ := runner.callFor("Market Analysis Specialist")
	assert.Contains(t, market.task.Description, pc.Validation)
	strategy, _ := runner.callFor("Strategic Advisor")
	assert.Contains(t, strategy.task.Description, pc.Market)
	funding, _ := runner.callFor("Fund Distribution Specialist")
	assert.Contains(t, funding.task.Description, pc.Market)

	for _, name := range artifact.Names {
		content, err := store.Read(ctx, "run-1", name)
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(content, "report by"), name)
	}
}

func TestRunAll_StopsOnFailure(t *testing.T) {
	runner := &fakeRunner{reply: func(spec agent.Spec) (string, error) {
		if spec.Role == "Market Analysis Specialist" {
			return "", apperr.New(apperr.UpstreamFailure, "agent", fmt.Errorf("search quota"))
		}
		return "ok", nil
	}}
	svc, _ := newTestService(t, runner, nil)

	_, err := svc.RunAll(context.Background(), "idea", "run-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(Market))
	assert.Equal(t, apperr.UpstreamFailure, apperr.Classify(err))

	_, ok := runner.callFor("Strategic Advisor")
	assert.False(t, ok)
}

func TestNewService_RequiresDeps(t *testing.T) {
	_, err := NewService(Deps{})
	assert.Error(t, err)
}

type specRunner func(ctx context.Context, spec agent.Spec) (string, error)

func (f specRunner) Run(ctx context.Context, spec agent.Spec, _ agent.Task, _ []tool.BaseTool) (string, error) {
	return f(ctx, spec)
}

func TestRunAll_FailedBranchCancelsSibling(t *testing.T) {
	runner := specRunner(func(ctx context.Context, spec agent.Spec) (string, error) {
		switch spec.Role {
		case "Strategic Advisor":
			<-ctx.Done()
			return "late strategy", nil
		case "Fund Distribution Specialist":
			return "", apperr.New(apperr.UpstreamFailure, "agent", fmt.Errorf("model overloaded"))
		}
		return "ok", nil
	})
	pub := &recordingPublisher{}
	svc, store := newTestService(t, runner, pub)
	ctx := context.Background()

	_, err := svc.RunAll(ctx, "idea", "run-3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(Funding))

	_, err = store.Read(ctx, "run-3", artifact.Company)
	assert.Equal(t, apperr.NotFound, apperr.Classify(err))

	// earlier stages stay written
	for _, name := range []string{artifact.Ideas, artifact.Market} {
		got, err := store.Read(ctx, "run-3", name)
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
	}
	assert.Len(t, pub.events, 2)
}
