package model

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/windlant/letter-counter/internal/config"
	"github.com/windlant/letter-counter/internal/protocol"
	"github.com/windlant/letter-counter/internal/tools"
)

// ToolForAPI 表示 LLM API（如 OpenAI）所期望的工具格式
type ToolForAPI struct {
	Type     string      `json:"type"` // 例如 "function"
	Function ToolFuncDef `json:"function"`
}

// ToolFuncDef 描述一个可调用的函数/工具
type ToolFuncDef struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"` // JSON Schema 对象
}

// ToolsForAPI maps tool descriptors to function tools, passing each schema
// through unchanged.
func ToolsForAPI(defs []tools.ToolDefinition) []ToolForAPI {
	out := make([]ToolForAPI, 0, len(defs))
	for _, def := range defs {
		out = append(out, ToolForAPI{
			Type: protocol.ToolTypeFunction,
			Function: ToolFuncDef{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return out
}

// Model 是所有大语言模型后端的统一接口
type Model interface {
	// ChatWithTools 发送一次对话请求
	// - 如果 tools 非空，模型可以返回 tool_calls
	// - content 为模型的文本回复，可能为空
	ChatWithTools(ctx context.Context, messages []protocol.Message, tools []ToolForAPI) (content string, toolCalls []protocol.ToolCall, err error)
}

// APIError reports a failed model API call. StatusCode is zero when no
// HTTP response was received.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// New 根据配置创建模型实例
func New(cfg config.ModelConfig) (Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		m, err := NewOpenAIModel(cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.ProviderOpenAIHTTP:
		m, err := NewHTTPModel(cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.ProviderLangChainGo:
		m, err := NewLangChainModel(cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Provider)
	}
}
