package registry

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/windlant/letter-counter/internal/tools"
)

func def(name, desc string, result string) tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        name,
		Description: desc,
		Parameters: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"q": {Type: "string", Description: "query"}},
			Required:   []string{"q"},
		},
		Function: func(context.Context, tools.ToolArguments) (string, error) {
			return result, nil
		},
	}
}

func TestListAllReturnsRegisteredDescriptors(t *testing.T) {
	r := New(DuplicateReject)
	a, b, c := def("alpha", "first", "1"), def("beta", "second", "2"), def("gamma", "third", "3")
	for _, d := range []tools.ToolDefinition{a, b, c} {
		if err := r.Register(d); err != nil {
			t.Fatalf("register %s: %v", d.Name, err)
		}
	}

	got := r.ListAll()
	if len(got) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(got))
	}
	for i, want := range []tools.ToolDefinition{a, b, c} {
		if got[i].Name != want.Name || got[i].Description != want.Description {
			t.Errorf("tool %d: got %s/%s, want %s/%s", i, got[i].Name, got[i].Description, want.Name, want.Description)
		}
		if got[i].Parameters != want.Parameters || !reflect.DeepEqual(got[i].Parameters.Required, []string{"q"}) {
			t.Errorf("tool %s: schema changed: %#v", want.Name, got[i].Parameters)
		}
	}
}

func TestRegisterDuplicateReject(t *testing.T) {
	r := New(DuplicateReject)
	if err := r.Register(def("dup", "one", "1")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := r.Register(def("dup", "two", "2"))
	if !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("expected ErrDuplicateTool, got %v", err)
	}
	if got, _ := r.Get("dup"); got.Description != "one" {
		t.Fatalf("expected original definition kept, got %q", got.Description)
	}
}

func TestRegisterDuplicateOverwrite(t *testing.T) {
	r := New(DuplicateOverwrite)
	_ = r.Register(def("dup", "one", "1"))
	_ = r.Register(def("other", "x", "x"))
	if err := r.Register(def("dup", "two", "2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := r.ListAll()
	if len(all) != 2 || all[0].Name != "dup" || all[0].Description != "two" {
		t.Fatalf("expected dup replaced in place, got %+v", all)
	}
}

func TestRegisterDuplicateIgnore(t *testing.T) {
	r := New(DuplicateIgnore)
	_ = r.Register(def("dup", "one", "1"))
	if err := r.Register(def("dup", "two", "2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := r.Get("dup"); got.Description != "one" {
		t.Fatalf("expected first definition kept, got %q", got.Description)
	}
	if n := len(r.ListAll()); n != 1 {
		t.Fatalf("expected 1 tool, got %d", n)
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	if err := New(DuplicateReject).Register(def("", "nameless", "")); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	cases := map[string]DuplicatePolicy{
		"":          DuplicateReject,
		"reject":    DuplicateReject,
		"error":     DuplicateReject,
		"overwrite": DuplicateOverwrite,
		"Replace":   DuplicateOverwrite,
		"ignore":    DuplicateIgnore,
	}
	for in, want := range cases {
		got, err := ParseDuplicatePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseDuplicatePolicy(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseDuplicatePolicy("warn"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	r := New(DuplicateReject)
	_, err := r.Execute(context.Background(), "missing", tools.ToolArguments{})
	var invErr *tools.InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvocationError, got %v", err)
	}
	if !errors.Is(err, tools.ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound in chain, got %v", err)
	}
}

func TestExecuteValidationFailureSkipsFunction(t *testing.T) {
	called := false
	d := def("strict", "", "")
	d.Function = func(context.Context, tools.ToolArguments) (string, error) {
		called = true
		return "ran", nil
	}
	r := New(DuplicateReject)
	_ = r.Register(d)

	_, err := r.Execute(context.Background(), "strict", tools.ToolArguments{"q": 42.0})
	var invErr *tools.InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvocationError, got %v", err)
	}
	if called {
		t.Fatal("function ran despite invalid arguments")
	}
}

func TestExecuteFunctionError(t *testing.T) {
	d := def("fails", "", "")
	d.Function = func(context.Context, tools.ToolArguments) (string, error) {
		return "", errors.New("boom")
	}
	r := New(DuplicateReject)
	_ = r.Register(d)

	_, err := r.Execute(context.Background(), "fails", tools.ToolArguments{"q": "x"})
	var invErr *tools.InvocationError
	if !errors.As(err, &invErr) || invErr.Message != "boom" {
		t.Fatalf("expected InvocationError boom, got %v", err)
	}
}

func TestExecuteValidatesAgainstSchema(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text":   {Type: "string"},
			"letter": {Type: "string"},
			"limit":  {Type: "integer"},
		},
		Required: []string{"text", "letter"},
	}
	d := def("count", "", "ok")
	d.Parameters = schema
	r := New(DuplicateReject)
	if err := r.Register(d); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name string
		args tools.ToolArguments
		ok   bool
	}{
		{"matching with extra field", tools.ToolArguments{"text": "strawberry", "letter": "r", "limit": float64(2), "extra": true}, true},
		{"missing required", tools.ToolArguments{"text": "strawberry"}, false},
		{"nil arguments", nil, false},
		{"number for string", tools.ToolArguments{"text": 3.0, "letter": "r"}, false},
		{"fraction for integer", tools.ToolArguments{"text": "a", "letter": "r", "limit": 1.5}, false},
		{"string for integer", tools.ToolArguments{"text": "a", "letter": "r", "limit": "2"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Execute(context.Background(), "count", tc.args)
			if tc.ok {
				if err != nil || got != "ok" {
					t.Fatalf("Execute = %q, %v; want ok", got, err)
				}
				return
			}
			var invErr *tools.InvocationError
			if !errors.As(err, &invErr) {
				t.Fatalf("expected InvocationError, got %v", err)
			}
			if invErr.Tool != "count" || !strings.Contains(invErr.Message, "invalid arguments") {
				t.Errorf("unexpected error: %+v", invErr)
			}
		})
	}
}

func TestExecuteWithoutSchemaAcceptsAnything(t *testing.T) {
	d := def("free", "", "ok")
	d.Parameters = nil
	r := New(DuplicateReject)
	_ = r.Register(d)

	if got, err := r.Execute(context.Background(), "free", tools.ToolArguments{"anything": 1.0}); err != nil || got != "ok" {
		t.Fatalf("Execute = %q, %v", got, err)
	}
}

func TestRegisterRejectsUnresolvableSchema(t *testing.T) {
	d := def("broken", "", "")
	d.Parameters = &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{"q": {Type: "string", Pattern: "("}},
	}
	r := New(DuplicateReject)
	if err := r.Register(d); err == nil {
		t.Fatal("expected error for a schema with an invalid pattern")
	}
	if _, ok := r.Get("broken"); ok {
		t.Error("tool registered despite invalid schema")
	}
}
