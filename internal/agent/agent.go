package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/windlant/letter-counter/internal/model"
	"github.com/windlant/letter-counter/internal/protocol"
	"github.com/windlant/letter-counter/internal/tools"
)

// NoResponse is reported as the answer when the model returns no text.
const NoResponse = "no response"

// ParseError reports tool call arguments that are not a JSON object.
type ParseError struct {
	Tool      string
	Arguments string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse arguments for tool %s: %v", e.Tool, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Result describes one completed run.
type Result struct {
	// Tools is the tool list sent with every completion request.
	Tools []model.ToolForAPI
	// ToolCall is the tool call that was acted on, if any.
	ToolCall   *protocol.ToolCall
	ToolResult string
	// Unsupported holds the type of a tool call that was not executed.
	// The run ends after the first completion when it is set.
	Unsupported  string
	Answer       string
	Conversation []protocol.Message
	// APICalls counts completion requests made during the run.
	APICalls int
}

// Agent runs a single two-turn conversation, mediated by at most one tool
// call. Each tool server operation uses its own connection.
type Agent struct {
	model  model.Model
	dial   tools.Dialer
	logger *slog.Logger
}

func NewAgent(m model.Model, dial tools.Dialer, logger *slog.Logger) *Agent {
	return &Agent{
		model:  m,
		dial:   dial,
		logger: logger.With("component", "agent"),
	}
}

// Run sends prompt to the model with the tool server's tools. When the model
// asks for a tool, the first requested call is executed and its result is
// sent back for a final answer. Any error ends the run.
func (a *Agent) Run(ctx context.Context, prompt string) (*Result, error) {
	defs, err := a.listTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	res := &Result{
		Tools: model.ToolsForAPI(defs),
		Conversation: []protocol.Message{
			{Role: protocol.RoleUser, Content: prompt},
		},
	}
	a.logger.Debug("tools discovered", "count", len(res.Tools))

	content, toolCalls, err := a.complete(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("first completion: %w", err)
	}

	if len(toolCalls) == 0 {
		res.Answer = answerOrPlaceholder(content)
		return res, nil
	}

	if len(toolCalls) > 1 {
		a.logger.Warn("model requested several tool calls, only the first is executed",
			"requested", len(toolCalls), "dropped", len(toolCalls)-1)
	}
	call := toolCalls[0]
	res.ToolCall = &call

	if call.Type != protocol.ToolTypeFunction {
		a.logger.Warn("unsupported tool call type", "type", call.Type, "id", call.ID)
		res.Unsupported = call.Type
		return res, nil
	}

	var args tools.ToolArguments
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return nil, &ParseError{Tool: call.Function.Name, Arguments: call.Function.Arguments, Err: err}
	}
	if args == nil {
		return nil, &ParseError{Tool: call.Function.Name, Arguments: call.Function.Arguments, Err: fmt.Errorf("arguments are not a JSON object")}
	}

	result, err := a.callTool(ctx, call.Function.Name, args)
	if err != nil {
		return nil, fmt.Errorf("call tool %s: %w", call.Function.Name, err)
	}
	res.ToolResult = result
	a.logger.Info("tool call complete", "tool", call.Function.Name, "id", call.ID)

	// Dropped calls are left out so that every tool_call id in the
	// conversation has a matching tool message.
	res.Conversation = append(res.Conversation,
		protocol.Message{
			Role:      protocol.RoleAssistant,
			Content:   content,
			ToolCalls: []protocol.ToolCall{call},
		},
		protocol.Message{
			Role:       protocol.RoleTool,
			ToolCallID: call.ID,
			Content:    result,
		},
	)

	content, _, err = a.complete(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("second completion: %w", err)
	}
	res.Answer = answerOrPlaceholder(content)
	return res, nil
}

func (a *Agent) complete(ctx context.Context, res *Result) (string, []protocol.ToolCall, error) {
	res.APICalls++
	a.logger.Debug("requesting completion", "turn", res.APICalls, "messages", len(res.Conversation))
	return a.model.ChatWithTools(ctx, res.Conversation, res.Tools)
}

func (a *Agent) listTools(ctx context.Context) (defs []tools.ToolDefinition, err error) {
	client, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return client.List(ctx)
}

func (a *Agent) callTool(ctx context.Context, name string, args tools.ToolArguments) (result string, err error) {
	client, err := a.dial(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return client.Call(ctx, name, args)
}

func answerOrPlaceholder(content string) string {
	if content == "" {
		return NoResponse
	}
	return content
}
