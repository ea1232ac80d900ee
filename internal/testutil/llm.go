package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/omriShneor/alfred_booking/internal/agent"
)

// ScriptedProvider replays a fixed sequence of model turns
type ScriptedProvider struct {
	mu        sync.Mutex
	responses []*agent.APIResponse
	requests  [][]agent.Message
	systems   []string
}

// NewScriptedProvider creates a provider that returns responses in order
func NewScriptedProvider(responses ...*agent.APIResponse) *ScriptedProvider {
	return &ScriptedProvider{responses: responses}
}

// ToolUseTurn builds a turn that calls one tool
func ToolUseTurn(id, name string, input map[string]any) *agent.APIResponse {
	return &agent.APIResponse{
		StopReason: agent.StopToolUse,
		Content:    []agent.ContentBlock{agent.ToolUseBlock{Type: "tool_use", ID: id, Name: name, Input: input}},
	}
}

// TextTurn builds a final text turn
func TextTurn(text string) *agent.APIResponse {
	return &agent.APIResponse{
		StopReason: agent.StopEndTurn,
		Content:    []agent.ContentBlock{agent.TextBlock{Type: "text", Text: text}},
	}
}

func (p *ScriptedProvider) Call(_ context.Context, messages []agent.Message, opts agent.CallOptions) (*agent.APIResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := make([]agent.Message, len(messages))
	copy(snapshot, messages)
	p.requests = append(p.requests, snapshot)
	p.systems = append(p.systems, opts.System)

	if len(p.responses) == 0 {
		return nil, fmt.Errorf("scripted provider has no response left")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func (p *ScriptedProvider) Name() string {
	return "scripted"
}

func (p *ScriptedProvider) IsConfigured() bool {
	return true
}

// Requests returns the conversations the provider received
func (p *ScriptedProvider) Requests() [][]agent.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]agent.Message{}, p.requests...)
}

// Systems returns the system prompts the provider received
func (p *ScriptedProvider) Systems() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.systems...)
}
