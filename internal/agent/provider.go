package agent

import "context"

// Provider is an LLM chat API with tool calling.
type Provider interface {
	// Call sends the conversation and returns the next assistant turn
	Call(ctx context.Context, messages []Message, opts CallOptions) (*APIResponse, error)
	// Name returns the provider name (for logging)
	Name() string
	// IsConfigured returns true if the provider has credentials
	IsConfigured() bool
}

// APIResponse wraps the parsed response from a provider. StopReason is
// StopEndTurn or StopToolUse regardless of the provider's own vocabulary.
type APIResponse struct {
	Content    []ContentBlock
	StopReason string
	Usage      UsageStats
}

// CallOptions configures an API call
type CallOptions struct {
	System     string
	Tools      []Tool
	ToolChoice string // "auto", "any", or specific tool name
	MaxTokens  int
}
