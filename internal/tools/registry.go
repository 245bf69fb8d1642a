// Package tools exposes the content heuristics as named, schema-described
// functions that the language model can call.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jonathan/content-agent/internal/types"
)

// Parameter types understood by the model's function-calling schema.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Param declares one tool argument.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
	// Items is the element type when Type is TypeArray.
	Items string
	// Properties describes object elements when Items is TypeObject.
	Properties []Param
}

// HandlerFunc executes a tool. Validation failures are reported in the result, not as errors.
type HandlerFunc func(ctx context.Context, args Args) types.ToolResult

// Tool is a callable helper with its declaration.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Handler     HandlerFunc
}

// Registry holds tools by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds t. Names must be unique and handlers non-nil.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %s has no handler", t.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		return &DuplicateToolError{Name: t.Name}
	}
	r.tools[t.Name] = t
	return nil
}

// MustRegister is Register that panics, for static tool tables.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, &UnknownToolError{Name: name}
	}
	return t, nil
}

// Select returns the named tools in the order given.
func (r *Registry) Select(names ...string) ([]Tool, error) {
	out := make([]Tool, 0, len(names))
	for _, n := range names {
		t, err := r.Get(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Names lists registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named tool with raw arguments. Missing required arguments
// yield an error result; only an unknown name is a Go error.
func (r *Registry) Invoke(ctx context.Context, name string, raw map[string]any) (types.ToolResult, error) {
	t, err := r.Get(name)
	if err != nil {
		return types.ToolResult{}, err
	}
	return t.Call(ctx, raw), nil
}

// Call checks required arguments and runs the handler.
func (t Tool) Call(ctx context.Context, raw map[string]any) types.ToolResult {
	args := Args(raw)
	for _, p := range t.Params {
		if p.Required && !args.Has(p.Name) {
			return types.ToolResult{
				Status:  types.StatusError,
				Message: fmt.Sprintf("missing required argument: %s", p.Name),
			}
		}
	}
	return t.Handler(ctx, args)
}
