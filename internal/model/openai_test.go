package model

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/windlant/letter-counter/internal/config"
	"github.com/windlant/letter-counter/internal/protocol"
)

func newTestOpenAIModel(t *testing.T, url string) *OpenAIModel {
	t.Helper()
	m, err := NewOpenAIModel(config.ModelConfig{APIKey: "test-key", ModelName: "gpt-4o", BaseURL: url})
	if err != nil {
		t.Fatalf("NewOpenAIModel: %v", err)
	}
	return m
}

func TestNewOpenAIModelRequiresKey(t *testing.T) {
	if _, err := NewOpenAIModel(config.ModelConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestOpenAIChatWithToolsReturnsToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			Tools []struct {
				Type     string `json:"type"`
				Function struct {
					Name       string `json:"name"`
					Parameters struct {
						Type     string   `json:"type"`
						Required []string `json:"required"`
					} `json:"parameters"`
				} `json:"function"`
			} `json:"tools"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-4o" || len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected request: %s", body)
		}
		if len(req.Tools) != 1 || req.Tools[0].Type != "function" || req.Tools[0].Function.Name != "count_letters" {
			t.Errorf("unexpected tools: %s", body)
		} else if p := req.Tools[0].Function.Parameters; p.Type != "object" || len(p.Required) != 2 {
			t.Errorf("schema not passed through: %s", body)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o",
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": null,
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "count_letters", "arguments": "{\"text\":\"strawberry\",\"letter\":\"r\"}"}
					}]
				},
				"finish_reason": "tool_calls"
			}]
		}`))
	}))
	defer server.Close()

	content, calls, err := newTestOpenAIModel(t, server.URL).ChatWithTools(context.Background(),
		[]protocol.Message{{Role: protocol.RoleUser, Content: "How many r's?"}}, testTools())
	if err != nil {
		t.Fatalf("ChatWithTools: %v", err)
	}
	if content != "" {
		t.Errorf("expected empty content, got %q", content)
	}
	if len(calls) != 1 || calls[0].ID != "call_1" || calls[0].Type != protocol.ToolTypeFunction {
		t.Fatalf("unexpected tool calls: %+v", calls)
	}
	if calls[0].Function.Name != "count_letters" || calls[0].Function.Arguments != `{"text":"strawberry","letter":"r"}` {
		t.Errorf("unexpected function: %+v", calls[0].Function)
	}
}

func TestOpenAIChatSendsToolRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role       string `json:"role"`
				Content    string `json:"content"`
				ToolCallID string `json:"tool_call_id"`
				ToolCalls  []struct {
					ID       string `json:"id"`
					Type     string `json:"type"`
					Function struct {
						Name      string `json:"name"`
						Arguments string `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if len(req.Messages) != 3 {
			t.Errorf("expected 3 messages, got %d", len(req.Messages))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assistant, tool := req.Messages[1], req.Messages[2]
		if assistant.Role != "assistant" || len(assistant.ToolCalls) != 1 {
			t.Errorf("unexpected assistant message: %+v", assistant)
		} else if tc := assistant.ToolCalls[0]; tc.ID != "call_1" || tc.Type != "function" || tc.Function.Name != "count_letters" {
			t.Errorf("unexpected echoed tool call: %+v", tc)
		}
		if tool.Role != "tool" || tool.ToolCallID != "call_1" || tool.Content != "3" {
			t.Errorf("unexpected tool message: %+v", tool)
		}

		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"There are 3."}}]}`))
	}))
	defer server.Close()

	history := []protocol.Message{
		{Role: protocol.RoleUser, Content: "How many r's?"},
		{Role: protocol.RoleAssistant, ToolCalls: []protocol.ToolCall{{
			ID: "call_1", Type: protocol.ToolTypeFunction,
			Function: protocol.Function{Name: "count_letters", Arguments: `{"text":"strawberry","letter":"r"}`},
		}}},
		{Role: protocol.RoleTool, ToolCallID: "call_1", Content: "3"},
	}
	content, calls, err := newTestOpenAIModel(t, server.URL).ChatWithTools(context.Background(), history, testTools())
	if err != nil {
		t.Fatalf("ChatWithTools: %v", err)
	}
	if content != "There are 3." || len(calls) != 0 {
		t.Fatalf("got %q, %+v", content, calls)
	}
}

func TestOpenAIChatWithoutToolsOmitsTools(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		if _, ok := raw["tools"]; ok {
			t.Error("tools should be omitted")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Hi"}}]}`))
	}))
	defer server.Close()

	content, calls, err := newTestOpenAIModel(t, server.URL).ChatWithTools(context.Background(),
		[]protocol.Message{{Role: protocol.RoleUser, Content: "Hello"}}, nil)
	if err != nil || content != "Hi" || len(calls) != 0 {
		t.Fatalf("got %q, %v, %v", content, calls, err)
	}
}

func TestOpenAIChatAPIErrorIsNotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	_, _, err := newTestOpenAIModel(t, server.URL).ChatWithTools(context.Background(),
		[]protocol.Message{{Role: protocol.RoleUser, Content: "Hello"}}, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", apiErr.StatusCode)
	}
	if requests != 1 {
		t.Errorf("expected a single request, got %d", requests)
	}
}

func TestOpenAIChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, _, err := newTestOpenAIModel(t, server.URL).ChatWithTools(context.Background(),
		[]protocol.Message{{Role: protocol.RoleUser, Content: "Hello"}}, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestOpenAIChatUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, _, err := newTestOpenAIModel(t, url).ChatWithTools(context.Background(),
		[]protocol.Message{{Role: protocol.RoleUser, Content: "Hello"}}, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 0 {
		t.Fatalf("expected transport APIError, got %v", err)
	}
}
