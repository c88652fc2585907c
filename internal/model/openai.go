package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/windlant/letter-counter/internal/config"
	"github.com/windlant/letter-counter/internal/protocol"
)

const (
	providerOpenAI = "OpenAI"
	requestTimeout = 60 * time.Second
)

// OpenAIModel 通过官方 openai-go SDK 调用 Chat Completions API
type OpenAIModel struct {
	client      *openai.Client
	modelName   string
	temperature float64
	maxTokens   int
}

// NewOpenAIModel 根据配置创建 OpenAI 模型实例。SDK 自带的重试被关闭，
// 每次 ChatWithTools 恰好对应一次 HTTP 请求。
func NewOpenAIModel(cfg config.ModelConfig) (*OpenAIModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set %s)", config.APIKeyEnv)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(requestTimeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIModel{
		client:      &client,
		modelName:   cfg.ModelName,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// ChatWithTools 发送支持工具调用的对话请求，返回文本内容和工具调用列表
func (m *OpenAIModel) ChatWithTools(ctx context.Context, messages []protocol.Message, tools []ToolForAPI) (string, []protocol.ToolCall, error) {
	params := openai.ChatCompletionNewParams{
		Model:    m.modelName,
		Messages: toOpenAIMessages(messages),
	}
	if m.temperature != 0 {
		params.Temperature = openai.Opt[float64](m.temperature)
	}
	if m.maxTokens > 0 {
		params.MaxTokens = openai.Opt[int64](int64(m.maxTokens))
	}
	if len(tools) > 0 {
		defs, err := toOpenAITools(tools)
		if err != nil {
			return "", nil, err
		}
		params.Tools = defs
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var sdkErr *openai.Error
		if errors.As(err, &sdkErr) {
			msg := sdkErr.Message
			if msg == "" {
				msg = http.StatusText(sdkErr.StatusCode)
			}
			return "", nil, &APIError{Provider: providerOpenAI, StatusCode: sdkErr.StatusCode, Message: msg, Err: err}
		}
		return "", nil, &APIError{Provider: providerOpenAI, Message: "failed to send request", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", nil, &APIError{Provider: providerOpenAI, Message: "no choices in response"}
	}

	msg := resp.Choices[0].Message
	var toolCalls []protocol.ToolCall
	for _, tc := range msg.ToolCalls {
		toolCalls = append(toolCalls, protocol.ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: protocol.Function{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return msg.Content, toolCalls, nil
}

func toOpenAITools(tools []ToolForAPI) ([]openai.ChatCompletionToolUnionParam, error) {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		params, err := functionParameters(t.Function.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Function.Name, err)
		}
		def := openai.FunctionDefinitionParam{
			Name:       t.Function.Name,
			Parameters: params,
		}
		if t.Function.Description != "" {
			def.Description = openai.String(t.Function.Description)
		}
		out = append(out, openai.ChatCompletionFunctionTool(def))
	}
	return out, nil
}

// functionParameters re-encodes a schema as the generic map the SDK sends.
func functionParameters(schema *jsonschema.Schema) (openai.FunctionParameters, error) {
	if schema == nil {
		return nil, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	var params openai.FunctionParameters
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return params, nil
}

func toOpenAIMessages(history []protocol.Message) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case protocol.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case protocol.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case protocol.RoleAssistant:
			var assistant openai.ChatCompletionAssistantMessageParam
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Function.Name,
							Arguments: tc.Function.Arguments,
						},
					},
				})
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case protocol.RoleTool:
			messages = append(messages, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return messages
}
