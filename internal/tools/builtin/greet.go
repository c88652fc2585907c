package builtin

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/windlant/letter-counter/internal/tools"
)

var GreetToolDef = tools.ToolDefinition{
	Name:        "greet",
	Description: "Greet a user by name",
	Parameters: &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name": {Type: "string", Description: "Name of the user"},
		},
		Required: []string{"name"},
	},
	Function: GreetTool,
}

func GreetTool(_ context.Context, args tools.ToolArguments) (string, error) {
	name, _ := args["name"].(string)
	return "Hello, " + name + "!", nil
}
