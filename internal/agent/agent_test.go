package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider replays canned responses and records what it was sent.
type scriptedProvider struct {
	responses []*APIResponse
	calls     [][]Message
	systems   []string
	err       error
}

func (p *scriptedProvider) Call(_ context.Context, messages []Message, opts CallOptions) (*APIResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	snapshot := make([]Message, len(messages))
	copy(snapshot, messages)
	p.calls = append(p.calls, snapshot)
	p.systems = append(p.systems, opts.System)

	if len(p.responses) == 0 {
		return nil, fmt.Errorf("no scripted response left")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func (p *scriptedProvider) Name() string       { return "scripted" }
func (p *scriptedProvider) IsConfigured() bool { return true }

func toolUse(id, name string, input map[string]any) *APIResponse {
	return &APIResponse{
		StopReason: StopToolUse,
		Content:    []ContentBlock{ToolUseBlock{Type: "tool_use", ID: id, Name: name, Input: input}},
		Usage:      UsageStats{InputTokens: 1, OutputTokens: 1, TotalTokens: 2},
	}
}

func finalText(text string) *APIResponse {
	return &APIResponse{
		StopReason: StopEndTurn,
		Content:    []ContentBlock{TextBlock{Type: "text", Text: text}},
		Usage:      UsageStats{InputTokens: 1, OutputTokens: 1, TotalTokens: 2},
	}
}

func TestExecute_ToolThenReply(t *testing.T) {
	provider := &scriptedProvider{responses: []*APIResponse{
		toolUse("tu_1", "echo", map[string]any{"value": "hi"}),
		finalText("done"),
	}}
	a := NewAgent(AgentConfig{Name: "test", Provider: provider, SystemPrompt: "base"})
	a.MustRegisterTool(Tool{Name: "echo"}, func(_ context.Context, input map[string]any) (string, error) {
		return fmt.Sprintf("echo:%v", input["value"]), nil
	})

	out, err := a.Execute(context.Background(), AgentInput{
		Messages: []Message{NewTextMessage(RoleUser, "say hi")},
		System:   "extra",
		MaxTurns: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, "done", out.FinalText)
	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, "echo:hi", out.ToolCalls[0].Output)
	assert.Equal(t, 4, out.Usage.TotalTokens)
	assert.Equal(t, "base\n\nextra", provider.systems[0])

	// second call sees the tool result
	require.Len(t, provider.calls, 2)
	last := provider.calls[1][len(provider.calls[1])-1]
	result, ok := last.Content[0].(ToolResultBlock)
	require.True(t, ok)
	assert.Equal(t, "tu_1", result.ToolUseID)
	assert.Equal(t, "echo:hi", result.Content)
	assert.False(t, result.IsError)
}

func TestExecute_ToolErrorIsReportedToModel(t *testing.T) {
	provider := &scriptedProvider{responses: []*APIResponse{
		toolUse("tu_1", "missing", nil),
		finalText("sorry"),
	}}
	a := NewAgent(AgentConfig{Name: "test", Provider: provider})

	out, err := a.Execute(context.Background(), AgentInput{
		Messages: []Message{NewTextMessage(RoleUser, "x")},
		MaxTurns: 2,
	})
	require.NoError(t, err)

	require.Len(t, out.ToolCalls, 1)
	assert.ErrorIs(t, out.ToolCalls[0].Error, ErrUnknownTool)
	assert.Contains(t, out.ToolCalls[0].ErrorText(), "missing")

	result := provider.calls[1][len(provider.calls[1])-1].Content[0].(ToolResultBlock)
	assert.True(t, result.IsError)
}

func TestExecute_MaxTurnsExceeded(t *testing.T) {
	provider := &scriptedProvider{responses: []*APIResponse{
		toolUse("tu_1", "echo", nil),
		toolUse("tu_2", "echo", nil),
	}}
	a := NewAgent(AgentConfig{Name: "test", Provider: provider})
	a.MustRegisterTool(Tool{Name: "echo"}, func(context.Context, map[string]any) (string, error) { return "ok", nil })

	out, err := a.Execute(context.Background(), AgentInput{
		Messages: []Message{NewTextMessage(RoleUser, "x")},
		MaxTurns: 2,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxTurns)
	require.NotNil(t, out)
	assert.Len(t, out.ToolCalls, 2)
}

func TestExecute_ProviderError(t *testing.T) {
	a := NewAgent(AgentConfig{Name: "test", Provider: &scriptedProvider{err: ErrInsufficientCredits}})

	_, err := a.Execute(context.Background(), AgentInput{Messages: []Message{NewTextMessage(RoleUser, "x")}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientCredits))
}

func TestExecute_NotConfigured(t *testing.T) {
	a := NewAgent(AgentConfig{Name: "test"})
	assert.False(t, a.IsConfigured())

	_, err := a.Execute(context.Background(), AgentInput{})
	assert.Error(t, err)
}

func TestToolRegistry(t *testing.T) {
	r := NewToolRegistry()
	handler := func(context.Context, map[string]any) (string, error) { return "", nil }

	require.NoError(t, r.Register(Tool{Name: "a"}, handler))
	require.NoError(t, r.Register(Tool{Name: "b"}, handler))
	assert.Error(t, r.Register(Tool{Name: "a"}, handler))
	assert.Error(t, r.Register(Tool{}, handler))

	assert.Equal(t, 2, r.ToolCount())
	assert.True(t, r.HasTool("b"))
	assert.Equal(t, "a", r.Tools()[0].Name)

	_, err := r.Execute(context.Background(), "c", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}
