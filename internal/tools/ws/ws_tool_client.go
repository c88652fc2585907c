package ws

import (
	"context"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/windlant/letter-counter/internal/protocol"
	"github.com/windlant/letter-counter/internal/tools"
)

// WSToolClient talks to a tool server running in network mode. Each request
// is one websocket message and is answered by exactly one message.
type WSToolClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Dial connects to the tool server at url, e.g. ws://127.0.0.1:8080/mcp.
func Dial(ctx context.Context, url string) (*WSToolClient, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, &tools.TransportError{Op: "connect", Err: fmt.Errorf("dial %s: %w", url, err)}
	}
	return &WSToolClient{conn: conn}, nil
}

// Dialer returns a tools.Dialer that opens a new websocket per connection.
func Dialer(url string) tools.Dialer {
	return func(ctx context.Context) (tools.ToolClient, error) {
		return Dial(ctx, url)
	}
}

func (c *WSToolClient) roundTrip(ctx context.Context, op string, req, resp interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := wsjson.Write(ctx, c.conn, req); err != nil {
		return &tools.TransportError{Op: op, Err: fmt.Errorf("send request: %w", err)}
	}
	if err := wsjson.Read(ctx, c.conn, resp); err != nil {
		return &tools.TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	return nil
}

func (c *WSToolClient) Call(ctx context.Context, name string, args tools.ToolArguments) (string, error) {
	req := protocol.MCPToolCallRequest{
		ID:     uuid.NewString(),
		Method: protocol.MCPMethodCallTool,
		Name:   name,
		Args:   args,
	}

	var resp protocol.MCPToolCallResponse
	if err := c.roundTrip(ctx, protocol.MCPMethodCallTool, req, &resp); err != nil {
		return "", err
	}
	if err := protocol.CheckID(protocol.MCPMethodCallTool, req.ID, resp.ID); err != nil {
		return "", err
	}
	if err := resp.Err(name); err != nil {
		return "", err
	}
	return resp.Result, nil
}

func (c *WSToolClient) List(ctx context.Context) ([]tools.ToolDefinition, error) {
	req := protocol.MCPListToolsRequest{
		ID:     uuid.NewString(),
		Method: protocol.MCPMethodListTools,
	}

	var resp protocol.MCPListToolsResponse
	if err := c.roundTrip(ctx, protocol.MCPMethodListTools, req, &resp); err != nil {
		return nil, err
	}
	if err := protocol.CheckID(protocol.MCPMethodListTools, req.ID, resp.ID); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

func (c *WSToolClient) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
