package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClientCall_ToolCalls(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "cancel_appointment", "arguments": "{\"client_email\":\"jane@example.com\",\"date\":\"tomorrow\",\"time\":\"3 PM\"}"}
					}]
				}
			}],
			"usage": {"prompt_tokens": 20, "completion_tokens": 8, "total_tokens": 28}
		}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test", "", srv.URL, 0)
	history := []Message{
		NewTextMessage(RoleUser, "cancel my 3pm tomorrow"),
	}
	resp, err := client.Call(context.Background(), history, CallOptions{
		System: "you book appointments",
		Tools: []Tool{{
			Name:        "cancel_appointment",
			InputSchema: BuildJSONSchema("object", map[string]any{"client_email": PropertyString("")}, []string{"client_email"}),
		}},
		ToolChoice: "auto",
	})
	require.NoError(t, err)

	assert.Equal(t, StopToolUse, resp.StopReason)
	assert.Equal(t, 28, resp.Usage.TotalTokens)
	require.Len(t, resp.Content, 1)
	use, ok := resp.Content[0].(ToolUseBlock)
	require.True(t, ok)
	assert.Equal(t, "call_1", use.ID)
	assert.Equal(t, "jane@example.com", use.Input["client_email"])

	assert.Equal(t, defaultOpenAIModel, got["model"])
	assert.Equal(t, "auto", got["tool_choice"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "you book appointments", msgs[0].(map[string]any)["content"])
}

func TestOpenAIClientCall_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient("sk-bad", "", srv.URL, 0).Call(context.Background(), []Message{NewTextMessage(RoleUser, "hi")}, CallOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestToOpenAIMessages_ToolRoundTrip(t *testing.T) {
	messages := []Message{
		NewTextMessage(RoleUser, "book me"),
		{Role: RoleAssistant, Content: []ContentBlock{
			ToolUseBlock{Type: "tool_use", ID: "call_1", Name: "check_availability", Input: map[string]any{"date": "today"}},
		}},
		{Role: RoleUser, Content: []ContentBlock{
			ToolResultBlock{Type: "tool_result", ToolUseID: "call_1", Content: `{"success":true}`},
		}},
	}

	out := toOpenAIMessages("", messages)
	require.Len(t, out, 3)
	assert.Equal(t, "user", out[0].Role)
	assert.Equal(t, "assistant", out[1].Role)
	require.Len(t, out[1].ToolCalls, 1)
	assert.JSONEq(t, `{"date":"today"}`, out[1].ToolCalls[0].Function.Arguments)
	assert.Equal(t, "tool", out[2].Role)
	assert.Equal(t, "call_1", out[2].ToolCallID)
	assert.Equal(t, `{"success":true}`, out[2].Content)
}
