package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/windlant/letter-counter/internal/protocol"
	"github.com/windlant/letter-counter/internal/tools"
	"github.com/windlant/letter-counter/internal/tools/registry"
)

// Server 用于处理 MCP 请求
type Server struct {
	name   string
	reg    *registry.Registry
	logger *slog.Logger
}

// New 创建一个新的 MCP 服务器实例
func New(name string, reg *registry.Registry, logger *slog.Logger) *Server {
	return &Server{
		name:   name,
		reg:    reg,
		logger: logger.With("component", "server", "server", name),
	}
}

func (s *Server) Name() string {
	return s.name
}

// HandleRequest 处理一个 MCP 请求，并返回原始的 JSON 响应字节。
// Every request yields exactly one response; failures are encoded in it.
func (s *Server) HandleRequest(ctx context.Context, requestBytes []byte) []byte {
	var req protocol.MCPRequest
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		return s.createErrorResponse("", protocol.CodeProtocolError, fmt.Sprintf("invalid JSON: %v", err))
	}

	switch req.Method {
	case protocol.MCPMethodListTools:
		return s.handleListTools(req.ID)
	case protocol.MCPMethodCallTool:
		args, err := decodeArguments(req.Args)
		if err != nil {
			s.logger.Info("call_tool failed", "id", req.ID, "tool", req.Name, "error", err)
			return s.createErrorResponse(req.ID, protocol.CodeInvocationError, err.Error())
		}
		return s.handleCallTool(ctx, req.ID, req.Name, args)
	case "":
		return s.createErrorResponse(req.ID, protocol.CodeProtocolError, "missing or invalid method field")
	default:
		return s.createErrorResponse(req.ID, protocol.CodeProtocolError, fmt.Sprintf("unknown method: %s", req.Method))
	}
}

// decodeArguments accepts an absent or null arguments field as {}.
// Anything other than a JSON object is rejected.
func decodeArguments(raw json.RawMessage) (tools.ToolArguments, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return tools.ToolArguments{}, nil
	}
	if trimmed[0] != '{' {
		return nil, errors.New("invalid arguments: expected a JSON object")
	}
	var args tools.ToolArguments
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}

// handleListTools 返回当前服务器支持的所有工具列表
func (s *Server) handleListTools(id string) []byte {
	defs := s.reg.ListAll()

	toolDefs := make([]tools.ToolDefinition, len(defs))
	for i, def := range defs {
		toolDefs[i] = def.Descriptor()
	}

	s.logger.Debug("list_tools", "id", id, "count", len(toolDefs))

	jsonBytes, err := json.Marshal(protocol.MCPListToolsResponse{ID: id, Tools: toolDefs})
	if err != nil {
		return s.createErrorResponse(id, protocol.CodeProtocolError, fmt.Sprintf("failed to marshal list_tools response: %v", err))
	}
	return jsonBytes
}

// handleCallTool 执行指定名称的工具，并传入给定的参数
func (s *Server) handleCallTool(ctx context.Context, id, name string, args tools.ToolArguments) []byte {
	result, err := s.reg.Execute(ctx, name, args)
	if err != nil {
		s.logger.Info("call_tool failed", "id", id, "tool", name, "error", err)
		var invErr *tools.InvocationError
		if errors.As(err, &invErr) {
			return s.createErrorResponse(id, protocol.CodeInvocationError, invErr.Message)
		}
		return s.createErrorResponse(id, protocol.CodeInvocationError, err.Error())
	}

	s.logger.Debug("call_tool", "id", id, "tool", name, "result", result)

	jsonBytes, err := json.Marshal(protocol.MCPToolCallResponse{ID: id, Result: result})
	if err != nil {
		return s.createErrorResponse(id, protocol.CodeProtocolError, fmt.Sprintf("failed to marshal call_tool response: %v", err))
	}
	return jsonBytes
}

// createErrorResponse 生成一个符合协议格式的错误响应
func (s *Server) createErrorResponse(id, code, message string) []byte {
	jsonBytes, err := json.Marshal(protocol.MCPToolCallResponse{
		ID:    id,
		Error: message,
		Code:  code,
	})
	if err != nil {
		return []byte(`{"error": "failed to create error response", "code": "protocol_error"}`)
	}
	return jsonBytes
}
