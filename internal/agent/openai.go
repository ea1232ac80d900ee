package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// chatCompleter is the part of *openai.Client the provider needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient calls the OpenAI Chat Completions API with function tools.
type OpenAIClient struct {
	client      chatCompleter
	apiKey      string
	model       string
	temperature float32
}

// NewOpenAIClient creates an OpenAI provider. An empty baseURL uses the public API.
func NewOpenAIClient(apiKey, model, baseURL string, temperature float64) *OpenAIClient {
	if model == "" {
		model = defaultOpenAIModel
	}
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: 120 * time.Second}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		apiKey:      apiKey,
		model:       model,
		temperature: float32(temperature),
	}
}

// Name implements Provider
func (c *OpenAIClient) Name() string {
	return "openai"
}

// IsConfigured returns true if the client has an API key
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Call implements Provider
func (c *OpenAIClient) Call(ctx context.Context, messages []Message, opts CallOptions) (*APIResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(opts.System, messages),
		Temperature: c.temperature,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}

	if len(opts.Tools) > 0 {
		req.Tools = make([]openai.Tool, len(opts.Tools))
		for i, tool := range opts.Tools {
			req.Tools[i] = openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        tool.Name,
					Description: tool.Description,
					Parameters:  tool.InputSchema,
				},
			}
		}

		switch opts.ToolChoice {
		case "":
		case "auto":
			req.ToolChoice = "auto"
		case "any":
			req.ToolChoice = "required"
		default:
			req.ToolChoice = openai.ToolChoice{
				Type:     openai.ToolTypeFunction,
				Function: openai.ToolFunction{Name: opts.ToolChoice},
			}
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	var content []ContentBlock
	if choice.Message.Content != "" {
		content = append(content, TextBlock{Type: "text", Text: choice.Message.Content})
	}
	for _, call := range choice.Message.ToolCalls {
		input := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &input); err != nil {
				return nil, fmt.Errorf("invalid arguments for tool %s: %w", call.Function.Name, err)
			}
		}
		content = append(content, ToolUseBlock{
			Type:  "tool_use",
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: input,
		})
	}

	stopReason := StopEndTurn
	if len(choice.Message.ToolCalls) > 0 {
		stopReason = StopToolUse
	}

	return &APIResponse{
		Content:    content,
		StopReason: stopReason,
		Usage: UsageStats{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// toOpenAIMessages flattens content blocks: tool uses become assistant tool_calls and each
// tool result becomes its own "tool" message.
func toOpenAIMessages(system string, messages []Message) []openai.ChatCompletionMessage {
	var out []openai.ChatCompletionMessage
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}

	for _, msg := range messages {
		var text string
		var calls []openai.ToolCall
		var results []openai.ChatCompletionMessage

		for _, block := range msg.Content {
			switch b := block.(type) {
			case TextBlock:
				text += b.Text
			case ToolUseBlock:
				args, err := json.Marshal(b.Input)
				if err != nil {
					args = []byte("{}")
				}
				calls = append(calls, openai.ToolCall{
					ID:   b.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      b.Name,
						Arguments: string(args),
					},
				})
			case ToolResultBlock:
				results = append(results, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    b.Content,
					ToolCallID: b.ToolUseID,
				})
			}
		}

		if len(results) > 0 {
			out = append(out, results...)
			continue
		}

		role := openai.ChatMessageRoleUser
		if msg.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: text, ToolCalls: calls})
	}
	return out
}
