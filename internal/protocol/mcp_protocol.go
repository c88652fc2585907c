package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/windlant/letter-counter/internal/tools"
)

// MCP Method Constants
const (
	MCPMethodListTools = "list_tools"
	MCPMethodCallTool  = "call_tool"
)

// Error codes carried in MCPToolCallResponse.Code.
const (
	CodeInvocationError = "invocation_error"
	CodeProtocolError   = "protocol_error"
)

// MCPRequest is the envelope every request is decoded into on the server.
// Args stays raw so a malformed arguments value does not lose the ID.
type MCPRequest struct {
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method"`
	Name   string          `json:"name,omitempty"`
	Args   json.RawMessage `json:"arguments,omitempty"`
}

// MCP Requests

type MCPListToolsRequest struct {
	ID     string `json:"id,omitempty"`
	Method string `json:"method"` // must be "list_tools"
}

type MCPToolCallRequest struct {
	ID     string                 `json:"id,omitempty"`
	Method string                 `json:"method"` // must be "call_tool"
	Name   string                 `json:"name"`
	Args   map[string]interface{} `json:"arguments"`
}

// MCP Responses

type MCPListToolsResponse struct {
	ID    string                 `json:"id,omitempty"`
	Tools []tools.ToolDefinition `json:"tools"`
	Error string                 `json:"error,omitempty"`
	Code  string                 `json:"code,omitempty"`
}

type MCPToolCallResponse struct {
	ID     string `json:"id,omitempty"`
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

// Err converts the error fields of a call_tool response into the matching
// client-side error, or nil when the call succeeded.
func (r MCPToolCallResponse) Err(tool string) error {
	return responseError(MCPMethodCallTool, tool, r.Code, r.Error)
}

// Err converts the error fields of a list_tools response, or nil.
func (r MCPListToolsResponse) Err() error {
	return responseError(MCPMethodListTools, "", r.Code, r.Error)
}

func responseError(op, tool, code, message string) error {
	if message == "" {
		return nil
	}
	if code == CodeInvocationError {
		return &tools.InvocationError{Tool: tool, Message: message}
	}
	return &tools.TransportError{Op: op, Err: errors.New(message)}
}

// CheckID reports a TransportError when a response does not answer the
// request it was read for.
func CheckID(op, want, got string) error {
	if got != want {
		return &tools.TransportError{Op: op, Err: fmt.Errorf("response id %q does not match request id %q", got, want)}
	}
	return nil
}
