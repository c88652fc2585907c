package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/windlant/letter-counter/internal/config"
	"github.com/windlant/letter-counter/internal/protocol"
)

const (
	providerHTTP   = "OpenAI-compatible"
	defaultBaseURL = "https://api.openai.com/v1"
)

// HTTPModel 是直接通过 HTTP 对接 OpenAI 兼容 Chat Completions API 的模型实现，
// 适用于 DeepSeek 等只兼容接口格式的服务。
type HTTPModel struct {
	apiKey      string
	modelName   string
	baseURL     string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []protocol.Message `json:"messages"`
	Tools       []ToolForAPI       `json:"tools,omitempty"`
	ToolChoice  string             `json:"tool_choice,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Stream      bool               `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string              `json:"content"`
			ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
	} `json:"choices"`
}

// NewHTTPModel 根据配置创建 HTTP 模型实例
func NewHTTPModel(cfg config.ModelConfig) (*HTTPModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set %s)", config.APIKeyEnv)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &HTTPModel{
		apiKey:      cfg.APIKey,
		modelName:   cfg.ModelName,
		baseURL:     baseURL,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// ChatWithTools 发送支持工具调用的对话请求，返回文本内容和工具调用列表
func (m *HTTPModel) ChatWithTools(ctx context.Context, messages []protocol.Message, tools []ToolForAPI) (string, []protocol.ToolCall, error) {
	reqBody := chatRequest{
		Model:       m.modelName,
		Messages:    messages,
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
		Stream:      false,
	}
	if len(tools) > 0 {
		reqBody.Tools = tools
		reqBody.ToolChoice = "auto"
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", nil, &APIError{Provider: providerHTTP, Message: "failed to send request", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, &APIError{Provider: providerHTTP, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", nil, &APIError{Provider: providerHTTP, StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", nil, &APIError{Provider: providerHTTP, Message: "failed to parse response", Err: err}
	}

	if len(apiResp.Choices) == 0 {
		return "", nil, &APIError{Provider: providerHTTP, Message: "no choices in response"}
	}

	msg := apiResp.Choices[0].Message
	return msg.Content, msg.ToolCalls, nil
}
