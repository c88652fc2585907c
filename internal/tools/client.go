package tools

import (
	"context"
	"errors"
	"fmt"
)

// ToolClient 是工具调用的统一接口，支持本地或远程（如 stdio、websocket）实现
type ToolClient interface {
	// Call 调用指定名称的工具，并传入参数
	Call(ctx context.Context, name string, args ToolArguments) (string, error)

	// List 返回所有可用工具的定义
	List(ctx context.Context) ([]ToolDefinition, error)

	// Close 释放资源（如关闭子进程或网络连接）
	Close() error
}

// Dialer opens a fresh connection to a tool server. Callers own the
// returned client and must Close it after use.
type Dialer func(ctx context.Context) (ToolClient, error)

// ErrToolNotFound 表示请求的工具未注册或不存在
var ErrToolNotFound = errors.New("tool not found")

// InvocationError reports that the server rejected a tool call: the tool is
// unknown, its arguments failed validation, or the tool itself failed.
type InvocationError struct {
	Tool    string
	Message string
	Err     error
}

func (e *InvocationError) Error() string {
	if e.Tool == "" {
		return "invocation error: " + e.Message
	}
	return fmt.Sprintf("invocation error: %s: %s", e.Tool, e.Message)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// NewInvocationError wraps err as an InvocationError for tool.
func NewInvocationError(tool string, err error) *InvocationError {
	return &InvocationError{Tool: tool, Message: err.Error(), Err: err}
}

// TransportError reports that a round trip with the tool server could not
// be completed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
