package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// ToolArguments represents the input parameters for a tool call.
// It is a JSON-serializable map of key-value pairs.
type ToolArguments map[string]interface{}

// ToolFunc is the function signature that all tool implementations must follow.
// It takes arguments and returns a string result or an error.
// The result should be plain text (not JSON) for simplicity.
type ToolFunc func(ctx context.Context, args ToolArguments) (string, error)

// ToolDefinition is the descriptor a server advertises for one tool.
// Parameters is the JSON Schema arguments are validated against before the
// tool runs. Function is only populated on the side that executes the tool.
type ToolDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"inputSchema,omitempty"`
	Function    ToolFunc           `json:"-"`
}

// Descriptor returns a copy of the definition without its implementation.
func (d ToolDefinition) Descriptor() ToolDefinition {
	d.Function = nil
	return d
}
