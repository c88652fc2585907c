package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/windlant/letter-counter/internal/tools"
)

// DuplicatePolicy decides what Register does with a name already in use.
type DuplicatePolicy string

const (
	DuplicateReject    DuplicatePolicy = "reject"
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	DuplicateIgnore    DuplicatePolicy = "ignore"
)

// ErrDuplicateTool is returned by Register under DuplicateReject.
var ErrDuplicateTool = errors.New("tool already registered")

// ParseDuplicatePolicy accepts the policy names plus the aliases "error"
// and "replace". An empty string means DuplicateReject.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject", "error":
		return DuplicateReject, nil
	case "overwrite", "replace":
		return DuplicateOverwrite, nil
	case "ignore":
		return DuplicateIgnore, nil
	default:
		return "", fmt.Errorf("unknown duplicate tool policy: %q", s)
	}
}

// Registry stores tool definitions by name and remembers registration order.
type Registry struct {
	mu     sync.RWMutex
	policy DuplicatePolicy
	tools  map[string]entry
	order  []string
}

// entry pairs a definition with its resolved input schema; schema is nil
// when the tool declares no parameters.
type entry struct {
	def    tools.ToolDefinition
	schema *jsonschema.Resolved
}

func New(policy DuplicatePolicy) *Registry {
	if policy == "" {
		policy = DuplicateReject
	}
	return &Registry{
		policy: policy,
		tools:  make(map[string]entry),
	}
}

func (r *Registry) Policy() DuplicatePolicy {
	return r.policy
}

func (r *Registry) Register(def tools.ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if def.Function == nil {
		return fmt.Errorf("tool %s has no function", def.Name)
	}
	e := entry{def: def}
	if def.Parameters != nil {
		resolved, err := def.Parameters.Resolve(nil)
		if err != nil {
			return fmt.Errorf("tool %s: invalid input schema: %w", def.Name, err)
		}
		e.schema = resolved
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		switch r.policy {
		case DuplicateOverwrite:
			r.tools[def.Name] = e
			return nil
		case DuplicateIgnore:
			return nil
		default:
			return fmt.Errorf("%w: %s", ErrDuplicateTool, def.Name)
		}
	}

	r.tools[def.Name] = e
	r.order = append(r.order, def.Name)
	return nil
}

func (r *Registry) Get(name string) (tools.ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	return e.def, ok
}

// ListAll returns every definition in registration order.
func (r *Registry) ListAll() []tools.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]tools.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].def)
	}
	return defs
}

// Execute validates args against the tool's schema and runs it. Every
// failure is reported as a *tools.InvocationError.
func (r *Registry) Execute(ctx context.Context, name string, args tools.ToolArguments) (string, error) {
	if name == "" {
		return "", &tools.InvocationError{Message: "tool name is required"}
	}

	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return "", tools.NewInvocationError(name, tools.ErrToolNotFound)
	}

	if args == nil {
		args = tools.ToolArguments{}
	}
	if e.schema != nil {
		if err := e.schema.Validate(map[string]any(args)); err != nil {
			return "", tools.NewInvocationError(name, fmt.Errorf("invalid arguments: %w", err))
		}
	}

	result, err := e.def.Function(ctx, args)
	if err != nil {
		return "", tools.NewInvocationError(name, err)
	}
	return result, nil
}
