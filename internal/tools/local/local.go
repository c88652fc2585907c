// internal/tools/local/local.go
package local

import (
	"context"

	"github.com/windlant/letter-counter/internal/tools"
	"github.com/windlant/letter-counter/internal/tools/registry"
)

// LocalToolClient calls tools in the current process without any transport.
type LocalToolClient struct {
	registry *registry.Registry
}

func NewLocalToolClient(r *registry.Registry) *LocalToolClient {
	return &LocalToolClient{registry: r}
}

func (c *LocalToolClient) Call(ctx context.Context, name string, args tools.ToolArguments) (string, error) {
	return c.registry.Execute(ctx, name, args)
}

func (c *LocalToolClient) List(context.Context) ([]tools.ToolDefinition, error) {
	defs := c.registry.ListAll()
	out := make([]tools.ToolDefinition, len(defs))
	for i, def := range defs {
		out[i] = def.Descriptor()
	}
	return out, nil
}

func (c *LocalToolClient) Close() error {
	return nil
}

// Dialer returns a tools.Dialer that hands out clients backed by r.
func Dialer(r *registry.Registry) tools.Dialer {
	return func(context.Context) (tools.ToolClient, error) {
		return NewLocalToolClient(r), nil
	}
}
