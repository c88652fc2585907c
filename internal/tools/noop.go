package tools

import "context"

// NoopToolClient advertises no tools. It stands in for a tool server when
// tool calling is disabled.
type NoopToolClient struct{}

func (n *NoopToolClient) Call(_ context.Context, name string, _ ToolArguments) (string, error) {
	return "", NewInvocationError(name, ErrToolNotFound)
}

func (n *NoopToolClient) List(context.Context) ([]ToolDefinition, error) {
	return nil, nil
}

func (n *NoopToolClient) Close() error {
	return nil
}
