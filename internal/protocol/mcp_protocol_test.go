package protocol

import (
	"errors"
	"testing"

	"github.com/windlant/letter-counter/internal/tools"
)

func TestToolCallResponseErr(t *testing.T) {
	if err := (MCPToolCallResponse{Result: "3"}).Err("count_letters"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	err := MCPToolCallResponse{Error: "tool not found", Code: CodeInvocationError}.Err("nope")
	var invErr *tools.InvocationError
	if !errors.As(err, &invErr) || invErr.Tool != "nope" || invErr.Message != "tool not found" {
		t.Fatalf("expected InvocationError, got %#v", err)
	}

	err = MCPToolCallResponse{Error: "unknown method: x", Code: CodeProtocolError}.Err("x")
	var tErr *tools.TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %#v", err)
	}
}

func TestCheckID(t *testing.T) {
	if err := CheckID(MCPMethodListTools, "a", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tErr *tools.TransportError
	if err := CheckID(MCPMethodListTools, "a", "b"); !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}
