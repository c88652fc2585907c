package model

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/windlant/letter-counter/internal/config"
	"github.com/windlant/letter-counter/internal/protocol"
)

const providerLangChain = "langchaingo"

// LangChainModel reaches an OpenAI-compatible endpoint through langchaingo.
type LangChainModel struct {
	client      *openai.LLM
	modelName   string
	temperature float64
	maxTokens   int
}

func NewLangChainModel(cfg config.ModelConfig) (*LangChainModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set %s)", config.APIKeyEnv)
	}

	opts := []openai.Option{
		openai.WithModel(cfg.ModelName),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchaingo client: %w", err)
	}
	return &LangChainModel{
		client:      client,
		modelName:   cfg.ModelName,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (m *LangChainModel) ChatWithTools(ctx context.Context, messages []protocol.Message, tools []ToolForAPI) (string, []protocol.ToolCall, error) {
	opts := []llms.CallOption{llms.WithModel(m.modelName)}
	if m.temperature != 0 {
		opts = append(opts, llms.WithTemperature(m.temperature))
	}
	if m.maxTokens != 0 {
		opts = append(opts, llms.WithMaxTokens(m.maxTokens))
	}
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(toLangChainTools(tools)))
	}

	resp, err := m.client.GenerateContent(ctx, toLangChainMessages(messages), opts...)
	if err != nil {
		return "", nil, &APIError{Provider: providerLangChain, Message: "generate content", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", nil, &APIError{Provider: providerLangChain, Message: "no choices in response"}
	}

	choice := resp.Choices[0]
	var toolCalls []protocol.ToolCall
	for _, tc := range choice.ToolCalls {
		call := protocol.ToolCall{ID: tc.ID, Type: tc.Type}
		if tc.FunctionCall != nil {
			call.Function = protocol.Function{
				Name:      tc.FunctionCall.Name,
				Arguments: tc.FunctionCall.Arguments,
			}
		}
		toolCalls = append(toolCalls, call)
	}
	return choice.Content, toolCalls, nil
}

func toLangChainTools(tools []ToolForAPI) []llms.Tool {
	out := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, llms.Tool{
			Type: t.Type,
			Function: &llms.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	return out
}

func toLangChainMessages(history []protocol.Message) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case protocol.RoleSystem:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case protocol.RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case protocol.RoleAssistant:
			var parts []llms.ContentPart
			if m.Content != "" {
				parts = append(parts, llms.TextPart(m.Content))
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, llms.ToolCall{
					ID:   tc.ID,
					Type: tc.Type,
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
			messages = append(messages, llms.MessageContent{
				Role:  llms.ChatMessageTypeAI,
				Parts: parts,
			})
		case protocol.RoleTool:
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: m.ToolCallID,
						Name:       m.Name,
						Content:    m.Content,
					},
				},
			})
		}
	}
	return messages
}
