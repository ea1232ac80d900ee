package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrMaxTurns is returned when the model keeps calling tools past the turn limit.
var ErrMaxTurns = errors.New("max turns exceeded")

// Agent represents an LLM-powered agent with tools
type Agent struct {
	name         string
	provider     Provider
	registry     *ToolRegistry
	systemPrompt string
	logger       *slog.Logger
}

// AgentConfig configures an agent
type AgentConfig struct {
	Name         string
	Provider     Provider
	SystemPrompt string
	Logger       *slog.Logger
}

// NewAgent creates a new agent with the given configuration
func NewAgent(cfg AgentConfig) *Agent {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		name:         cfg.Name,
		provider:     cfg.Provider,
		registry:     NewToolRegistry(),
		systemPrompt: cfg.SystemPrompt,
		logger:       logger.With("agent", cfg.Name),
	}
}

// Name returns the agent's name
func (a *Agent) Name() string {
	return a.name
}

// RegisterTool adds a tool to the agent
func (a *Agent) RegisterTool(tool Tool, handler ToolHandler) error {
	return a.registry.Register(tool, handler)
}

// MustRegisterTool adds a tool and panics on error
func (a *Agent) MustRegisterTool(tool Tool, handler ToolHandler) {
	a.registry.MustRegister(tool, handler)
}

// Tools returns all registered tools
func (a *Agent) Tools() []Tool {
	return a.registry.Tools()
}

// Registry exposes the tool registry for direct invocation
func (a *Agent) Registry() *ToolRegistry {
	return a.registry
}

// Execute runs the agent with the given input
func (a *Agent) Execute(ctx context.Context, input AgentInput) (*AgentOutput, error) {
	prompt := a.systemPrompt
	if extra := strings.TrimSpace(input.System); extra != "" {
		if prompt != "" {
			prompt += "\n\n"
		}
		prompt += extra
	}
	return a.executeWithPrompt(ctx, input, prompt)
}

func (a *Agent) executeWithPrompt(ctx context.Context, input AgentInput, systemPrompt string) (*AgentOutput, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("agent %s has no configured provider", a.name)
	}

	maxTurns := input.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 1 // Default to single-shot
	}

	messages := make([]Message, len(input.Messages))
	copy(messages, input.Messages)

	var totalUsage UsageStats
	var allToolCalls []ToolCall

	for turn := 0; turn < maxTurns; turn++ {
		response, err := a.provider.Call(ctx, messages, CallOptions{
			System:     systemPrompt,
			Tools:      a.registry.Tools(),
			ToolChoice: "auto",
		})
		if err != nil {
			return nil, fmt.Errorf("API call failed on turn %d: %w", turn+1, err)
		}
		totalUsage.Add(response.Usage)

		switch response.StopReason {
		case StopEndTurn:
			messages = append(messages, Message{Role: RoleAssistant, Content: response.Content})
			return &AgentOutput{
				ToolCalls:    allToolCalls,
				Conversation: messages,
				Usage:        totalUsage,
				FinalText:    extractFinalText(response.Content),
			}, nil

		case StopToolUse:
			messages = append(messages, Message{Role: RoleAssistant, Content: response.Content})

			toolResults, toolCalls := a.executeTools(ctx, response.Content)
			allToolCalls = append(allToolCalls, toolCalls...)

			messages = append(messages, Message{Role: RoleUser, Content: toolResults})
			continue

		default:
			return nil, fmt.Errorf("unexpected stop reason: %s", response.StopReason)
		}
	}

	// Max turns exceeded - return what we have
	return &AgentOutput{
		ToolCalls:    allToolCalls,
		Conversation: messages,
		Usage:        totalUsage,
	}, fmt.Errorf("%w (%d)", ErrMaxTurns, maxTurns)
}

// executeTools runs all tool_use blocks and returns results
func (a *Agent) executeTools(ctx context.Context, content []ContentBlock) ([]ContentBlock, []ToolCall) {
	var results []ContentBlock
	var calls []ToolCall

	for _, block := range content {
		toolUse, ok := block.(ToolUseBlock)
		if !ok {
			continue
		}

		output, err := a.registry.Execute(ctx, toolUse.Name, toolUse.Input)
		if err != nil {
			a.logger.Warn("tool call failed", "tool", toolUse.Name, "error", err)
		} else {
			a.logger.Debug("tool call completed", "tool", toolUse.Name)
		}

		calls = append(calls, ToolCall{
			Name:   toolUse.Name,
			Input:  toolUse.Input,
			Output: output,
			Error:  err,
		})

		resultBlock := ToolResultBlock{
			Type:      "tool_result",
			ToolUseID: toolUse.ID,
			Content:   output,
			IsError:   err != nil,
		}
		if err != nil {
			resultBlock.Content = err.Error()
		}
		results = append(results, resultBlock)
	}

	return results, calls
}

// extractFinalText joins the text blocks of the final response
func extractFinalText(content []ContentBlock) string {
	var parts []string
	for _, block := range content {
		if text, ok := block.(TextBlock); ok && text.Text != "" {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// IsConfigured returns true if the agent's provider is configured
func (a *Agent) IsConfigured() bool {
	return a.provider != nil && a.provider.IsConfigured()
}

// ProviderName returns the provider name, or "" when none is set
func (a *Agent) ProviderName() string {
	if a.provider == nil {
		return ""
	}
	return a.provider.Name()
}
