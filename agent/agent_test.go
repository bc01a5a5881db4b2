package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ideaforge/apperr"
	"ideaforge/config"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// scriptedModel replays canned replies and records every conversation it saw
type scriptedModel struct {
	mu      sync.Mutex
	replies []*schema.Message
	err     error
	calls   [][]*schema.Message
	tools   []*schema.ToolInfo
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, input)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return schema.AssistantMessage("out of script", nil), nil
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	return next, nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.tools = tools
	return m, nil
}

type lookupInput struct {
	Name string `json:"name"`
}

type lookupOutput struct {
	Content string `json:"content"`
}

func lookupTool(t *testing.T) tool.BaseTool {
	t.Helper()
	tl, err := utils.InferTool("read_artifact", "read a document",
		func(ctx context.Context, in lookupInput) (lookupOutput, error) {
			return lookupOutput{Content: "contents of " + in.Name}, nil
		})
	require.NoError(t, err)
	return tl
}

var testSpec = Spec{Role: "Market Analyst", Goal: "size the market", Backstory: "You know Indian startups."}

func TestEinoRunner_DirectAnswer(t *testing.T) {
	cm := &scriptedModel{replies: []*schema.Message{schema.AssistantMessage("  final answer\n", nil)}}
	r := NewEinoRunner(cm, rate.NewLimiter(rate.Inf, 1), 0)

	out, err := r.Run(context.Background(), testSpec, Task{Description: "Analyse meal kits", ExpectedOutput: "a report"}, []tool.BaseTool{lookupTool(t)})
	require.NoError(t, err)
	assert.Equal(t, "  final answer\n", out, "runner returns raw content; trimming belongs to the caller")

	require.Len(t, cm.calls, 1)
	assert.Equal(t, schema.System, cm.calls[0][0].Role)
	assert.Contains(t, cm.calls[0][0].Content, "Market Analyst")
	assert.Contains(t, cm.calls[0][1].Content, "Analyse meal kits")
	assert.Contains(t, cm.calls[0][1].Content, "a report")
	require.Len(t, cm.tools, 1)
	assert.Equal(t, "read_artifact", cm.tools[0].Name)
}

func TestEinoRunner_ToolRoundTrip(t *testing.T) {
	cm := &scriptedModel{replies: []*schema.Message{
		schema.AssistantMessage("", []schema.ToolCall{{
			ID:       "call_1",
			Type:     "function",
			Function: schema.FunctionCall{Name: "read_artifact", Arguments: `{"name":"ideas.md"}`},
		}}),
		schema.AssistantMessage("market report", nil),
	}}
	r := NewEinoRunner(cm, nil, 4)

	out, err := r.Run(context.Background(), testSpec, Task{Description: "d", ExpectedOutput: "e"}, []tool.BaseTool{lookupTool(t)})
	require.NoError(t, err)
	assert.Equal(t, "market report", out)

	require.Len(t, cm.calls, 2)
	last := cm.calls[1][len(cm.calls[1])-1]
	assert.Equal(t, schema.Tool, last.Role)
	assert.Contains(t, last.Content, "contents of ideas.md")
}

func TestEinoRunner_NoTools(t *testing.T) {
	cm := &scriptedModel{replies: []*schema.Message{schema.AssistantMessage("plain", nil)}}
	out, err := NewEinoRunner(cm, nil, 0).Run(context.Background(), testSpec, Task{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", out)
}

func TestEinoRunner_ModelFailure(t *testing.T) {
	cm := &scriptedModel{err: errors.New("503 from provider")}
	_, err := NewEinoRunner(cm, nil, 0).Run(context.Background(), testSpec, Task{}, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.UpstreamFailure, apperr.Classify(err))
	assert.Contains(t, err.Error(), "503 from provider")
}

func TestEinoRunner_RateLimitWaitExceedsDeadline(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cm := &scriptedModel{}
	_, err := NewEinoRunner(cm, limiter, 0).Run(ctx, testSpec, Task{}, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.UpstreamTimeout, apperr.Classify(err))
	assert.Empty(t, cm.calls, "model must not be called without a token")
}

func TestNewLimiter(t *testing.T) {
	assert.Equal(t, rate.Inf, NewLimiter(config.ConcurrencyConfig{}).Limit())

	l := NewLimiter(config.ConcurrencyConfig{QPS: 2, RPM: 120})
	assert.Equal(t, rate.Limit(2), l.Limit())
	assert.Equal(t, 2, l.Burst())
}
