package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"

	"github.com/windlant/letter-counter/internal/protocol"
	"github.com/windlant/letter-counter/internal/tools"
)

const maxResponseSize = 1 << 20

type StdioToolClient struct {
	cmd       *exec.Cmd
	stdinPipe io.WriteCloser
	stdin     *json.Encoder
	stdout    *bufio.Scanner
	mu        sync.Mutex // ensure thread-safe calls
}

// NewStdioToolClient starts cmd as a tool server subprocess and sets up
// communication over its stdin and stdout. The subprocess's stderr is
// forwarded to ours unless cmd.Stderr is already set.
func NewStdioToolClient(cmd *exec.Cmd) (*StdioToolClient, error) {
	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, &tools.TransportError{Op: "connect", Err: fmt.Errorf("create stdin pipe: %w", err)}
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &tools.TransportError{Op: "connect", Err: fmt.Errorf("create stdout pipe: %w", err)}
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
			err = fmt.Errorf("%w (build it with `make build`)", err)
		}
		return nil, &tools.TransportError{Op: "connect", Err: fmt.Errorf("start server process: %w", err)}
	}

	scanner := bufio.NewScanner(stdoutPipe)
	scanner.Buffer(make([]byte, 0, 64*1024), maxResponseSize)

	return &StdioToolClient{
		cmd:       cmd,
		stdinPipe: stdinPipe,
		stdin:     json.NewEncoder(stdinPipe),
		stdout:    scanner,
	}, nil
}

// Dialer returns a tools.Dialer that starts a fresh server process for
// every connection. env is appended to the current environment.
func Dialer(path string, args []string, env []string) tools.Dialer {
	return func(ctx context.Context) (tools.ToolClient, error) {
		cmd := exec.CommandContext(ctx, path, args...)
		if len(env) > 0 {
			cmd.Env = append(os.Environ(), env...)
		}
		return NewStdioToolClient(cmd)
	}
}

// sendRequest sends a request and reads one line of response.
func (c *StdioToolClient) sendRequest(op string, req interface{}) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.stdin.Encode(req); err != nil {
		return nil, &tools.TransportError{Op: op, Err: fmt.Errorf("send request: %w", err)}
	}

	if c.stdout.Scan() {
		return c.stdout.Bytes(), nil
	}

	if err := c.stdout.Err(); err != nil {
		return nil, &tools.TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	return nil, &tools.TransportError{Op: op, Err: fmt.Errorf("server closed stdout unexpectedly")}
}

// Call invokes a tool by name with arguments.
func (c *StdioToolClient) Call(_ context.Context, name string, args tools.ToolArguments) (string, error) {
	req := protocol.MCPToolCallRequest{
		ID:     uuid.NewString(),
		Method: protocol.MCPMethodCallTool,
		Name:   name,
		Args:   args,
	}

	respBytes, err := c.sendRequest(protocol.MCPMethodCallTool, req)
	if err != nil {
		return "", err
	}

	var resp protocol.MCPToolCallResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return "", &tools.TransportError{Op: protocol.MCPMethodCallTool, Err: fmt.Errorf("parse response: %w", err)}
	}
	if err := protocol.CheckID(protocol.MCPMethodCallTool, req.ID, resp.ID); err != nil {
		return "", err
	}
	if err := resp.Err(name); err != nil {
		return "", err
	}

	return resp.Result, nil
}

// List retrieves all available tools from the server.
func (c *StdioToolClient) List(context.Context) ([]tools.ToolDefinition, error) {
	req := protocol.MCPListToolsRequest{
		ID:     uuid.NewString(),
		Method: protocol.MCPMethodListTools,
	}

	respBytes, err := c.sendRequest(protocol.MCPMethodListTools, req)
	if err != nil {
		return nil, err
	}

	var resp protocol.MCPListToolsResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, &tools.TransportError{Op: protocol.MCPMethodListTools, Err: fmt.Errorf("parse response: %w", err)}
	}
	if err := protocol.CheckID(protocol.MCPMethodListTools, req.ID, resp.ID); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	return resp.Tools, nil
}

// Close closes the server's stdin, which ends its read loop, and waits for
// the process to exit.
func (c *StdioToolClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.stdinPipe.Close()
	if err := c.cmd.Wait(); err != nil {
		return &tools.TransportError{Op: "close", Err: fmt.Errorf("server process: %w", err)}
	}
	return nil
}
