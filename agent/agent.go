// Package agent runs role-playing LLM agents with a tool set and returns
// their final answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ideaforge/apperr"
	"ideaforge/config"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"
)

// Spec describes who the agent is
type Spec struct {
	Role      string
	Goal      string
	Backstory string
}

// Task describes what the agent has to produce
type Task struct {
	Description    string
	ExpectedOutput string
}

// Runner executes one agent on one task
type Runner interface {
	Run(ctx context.Context, spec Spec, task Task, tools []tool.BaseTool) (string, error)
}

// NewChatModel builds the OpenAI-compatible chat model from config
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.ToolCallingChatModel, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM init failed: %w", err)
	}
	return cm, nil
}

// NewLimiter converts the configured requests-per-minute into a token bucket
// with a burst of QPS
func NewLimiter(cfg config.ConcurrencyConfig) *rate.Limiter {
	if cfg.RPM <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := cfg.QPS
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), burst)
}

// EinoRunner drives a ReAct loop over an eino tool-calling model
type EinoRunner struct {
	model    model.ToolCallingChatModel
	maxSteps int
}

// NewEinoRunner wraps cm so that every model call waits on limiter
func NewEinoRunner(cm model.ToolCallingChatModel, limiter *rate.Limiter, maxSteps int) *EinoRunner {
	if maxSteps <= 0 {
		maxSteps = config.DefaultAgentMaxSteps
	}
	if limiter != nil {
		cm = &limitedModel{inner: cm, limiter: limiter}
	}
	return &EinoRunner{model: cm, maxSteps: maxSteps}
}

// Run returns the content of the agent's final message
func (r *EinoRunner) Run(ctx context.Context, spec Spec, task Task, tools []tool.BaseTool) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt(spec)),
		schema.UserMessage(taskPrompt(task)),
	}

	var (
		resp *schema.Message
		err  error
	)
	if len(tools) == 0 {
		resp, err = r.model.Generate(ctx, messages)
	} else {
		var ag *react.Agent
		ag, err = react.NewAgent(ctx, &react.AgentConfig{
			ToolCallingModel: r.model,
			ToolsConfig:      compose.ToolsNodeConfig{Tools: tools},
			MaxStep:          r.maxSteps,
		})
		if err != nil {
			return "", apperr.New(apperr.Internal, "agent init", err)
		}
		resp, err = ag.Generate(ctx, messages)
	}
	if err != nil {
		return "", classify(ctx, err)
	}
	if resp == nil {
		return "", apperr.Errorf(apperr.UpstreamFailure, "agent %q returned no message", spec.Role)
	}
	return resp.Content, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.New(apperr.UpstreamTimeout, "agent", err)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return apperr.New(ae.Kind, "agent", err)
	}
	return apperr.New(apperr.UpstreamFailure, "agent", err)
}

func systemPrompt(spec Spec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s. %s\n", spec.Role, strings.TrimSpace(spec.Backstory))
	fmt.Fprintf(&sb, "Your personal goal is: %s\n", spec.Goal)
	sb.WriteString("Use the available tools when they help. When you are done, reply with the final answer only.")
	return sb.String()
}

func taskPrompt(task Task) string {
	return fmt.Sprintf("%s\n\nThis is the expected criteria for your final answer: %s",
		strings.TrimSpace(task.Description), strings.TrimSpace(task.ExpectedOutput))
}

// limitedModel makes every Generate and Stream call wait for a limiter token
type limitedModel struct {
	inner   model.ToolCallingChatModel
	limiter *rate.Limiter
}

func (m *limitedModel) wait(ctx context.Context) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return apperr.New(apperr.UpstreamTimeout, "llm rate limit", err)
	}
	return nil
}

func (m *limitedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.inner.Generate(ctx, input, opts...)
}

func (m *limitedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.inner.Stream(ctx, input, opts...)
}

func (m *limitedModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	inner, err := m.inner.WithTools(tools)
	if err != nil {
		return nil, err
	}
	return &limitedModel{inner: inner, limiter: m.limiter}, nil
}
