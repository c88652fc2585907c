package builtin

import (
	"github.com/windlant/letter-counter/internal/tools"
	"github.com/windlant/letter-counter/internal/tools/registry"
)

// All returns the definitions the tool server registers by default.
func All() []tools.ToolDefinition {
	return []tools.ToolDefinition{
		CountLettersToolDef,
		GreetToolDef,
	}
}

// NewRegistry returns a registry holding every built-in tool.
func NewRegistry(policy registry.DuplicatePolicy) (*registry.Registry, error) {
	reg := registry.New(policy)
	for _, def := range All() {
		if err := reg.Register(def); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
