// Package booking is the conversational appointment assistant.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/omriShneor/alfred_booking/internal/agent"
	"github.com/omriShneor/alfred_booking/internal/agent/tools"
	"github.com/omriShneor/alfred_booking/internal/normalize"
	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

const defaultMaxTurns = 4

// maxTurnsReply is returned when the model never finishes its tool calls.
const maxTurnsReply = "Sorry, I could not finish that request. Please try again with a little more detail."

// ErrNoUserMessage is returned when a conversation has nothing for the assistant to answer.
var ErrNoUserMessage = errors.New("conversation has no user message")

// ChatMessage is one entry of the chat history exchanged with the web client
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCallSummary reports one tool invocation made while answering
type ToolCallSummary struct {
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Output string         `json:"output"`
	Error  string         `json:"error,omitempty"`
}

// Reply is the assistant's answer to a chat request
type Reply struct {
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	ToolCalls []ToolCallSummary `json:"tool_calls"`
}

// Agent answers booking conversations using the appointment tools
type Agent struct {
	*agent.Agent
	norm     *normalize.Normalizer
	maxTurns int
	logger   *slog.Logger
}

// Config configures the booking agent
type Config struct {
	Provider   agent.Provider
	Operations tools.Operations
	Normalizer *normalize.Normalizer
	MaxTurns   int
	Logger     *slog.Logger
}

// NewAgent creates the booking agent with all seven tools registered
func NewAgent(cfg Config) (*Agent, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	norm := cfg.Normalizer
	if norm == nil {
		norm = normalize.New(nil, normalize.MonthFirst)
	}
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}

	base := agent.NewAgent(agent.AgentConfig{
		Name:     "booking-assistant",
		Provider: cfg.Provider,
		Logger:   logger,
	})
	if err := tools.NewHandlers(cfg.Operations).Register(base.Registry()); err != nil {
		return nil, fmt.Errorf("failed to register booking tools: %w", err)
	}

	return &Agent{
		Agent:    base,
		norm:     norm,
		maxTurns: maxTurns,
		logger:   logger.With("component", "booking"),
	}, nil
}

// SystemPrompt renders the prompt for the current moment in the operating zone
func (a *Agent) SystemPrompt() string {
	now := a.norm.Now()
	return fmt.Sprintf(systemPromptTemplate,
		now.Format(timeutil.DateLayout),
		now.Weekday(),
		now.Format(timeutil.ClockLayout),
		now.Location().String(),
	)
}

// Chat answers the last user message of history. Client-supplied system messages are
// appended to the built-in prompt; roles other than user and assistant are ignored.
func (a *Agent) Chat(ctx context.Context, history []ChatMessage) (*Reply, error) {
	var messages []agent.Message
	var extra []string
	hasUser := false

	for _, m := range history {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch strings.ToLower(m.Role) {
		case "system":
			extra = append(extra, content)
		case agent.RoleUser:
			hasUser = true
			messages = append(messages, agent.NewTextMessage(agent.RoleUser, content))
		case agent.RoleAssistant:
			messages = append(messages, agent.NewTextMessage(agent.RoleAssistant, content))
		}
	}
	if !hasUser {
		return nil, ErrNoUserMessage
	}

	output, err := a.Execute(ctx, agent.AgentInput{
		Messages: messages,
		System:   a.SystemPrompt() + "\n\n" + strings.Join(extra, "\n\n"),
		MaxTurns: a.maxTurns,
	})
	if err != nil && !(errors.Is(err, agent.ErrMaxTurns) && output != nil) {
		return nil, err
	}

	reply := &Reply{
		Role:      agent.RoleAssistant,
		Content:   output.FinalText,
		ToolCalls: summarize(output.ToolCalls),
	}
	if err != nil {
		a.logger.Warn("assistant did not finish", "max_turns", a.maxTurns, "tool_calls", len(output.ToolCalls))
		reply.Content = maxTurnsReply
	}

	a.logger.Info("chat answered",
		"provider", a.ProviderName(),
		"tool_calls", len(reply.ToolCalls),
		"input_tokens", output.Usage.InputTokens,
		"output_tokens", output.Usage.OutputTokens,
	)
	return reply, nil
}

// ExecuteTool runs one booking tool directly, bypassing the model
func (a *Agent) ExecuteTool(ctx context.Context, name string, input map[string]any) (string, error) {
	return a.Registry().Execute(ctx, name, input)
}

func summarize(calls []agent.ToolCall) []ToolCallSummary {
	out := make([]ToolCallSummary, 0, len(calls))
	for _, c := range calls {
		out = append(out, ToolCallSummary{
			Name:   c.Name,
			Input:  c.Input,
			Output: c.Output,
			Error:  c.ErrorText(),
		})
	}
	return out
}
