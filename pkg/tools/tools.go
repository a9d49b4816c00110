package tools

import (
	"fmt"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	loggerpkg "github.com/minhyannv/velocity-agent-go/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Tool is one lookup the model may request through a JSON envelope.
type Tool interface {
	// Name is the value of the envelope's "tool" field.
	Name() string
	// RequiredArgs lists envelope fields that must be present.
	RequiredArgs() []string
	// Instruction is the exact envelope shown to the model as an example.
	Instruction() string
	// Execute runs the tool; the result is rendered as JSON.
	Execute(call Call) (any, error)
}

// Call is a parsed tool-call envelope.
type Call struct {
	Tool string
	Args map[string]any
}

// Arg returns the named argument as text. Non-string values, null included,
// are rendered as JSON; a missing argument is empty.
func (c Call) Arg(name string) string {
	v, ok := c.Args[name]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// OrderID returns the order_id argument.
func (c Call) OrderID() string {
	return c.Arg(argOrderID)
}

// Registry holds registered tools keyed by name.
type Registry struct {
	registry map[string]Tool
	order    []string
	logger   loggerpkg.Logger
	verbose  bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger injects a logger used for verbose registration and execution logs.
func WithLogger(l loggerpkg.Logger, verbose bool) RegistryOption {
	return func(r *Registry) {
		r.logger = l
		r.verbose = verbose
	}
}

// New builds a registry with the built-in tools.
func New(opts ...RegistryOption) *Registry {
	r := &Registry{
		registry: make(map[string]Tool),
		logger:   loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	_ = r.Register(orderStatusTool{})
	return r
}

// Register adds a tool under its name. Names must be unique and non-empty.
func (r *Registry) Register(t Tool) error {
	name := strings.TrimSpace(t.Name())
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := r.registry[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}
	r.registry[name] = t
	r.order = append(r.order, name)
	loggerpkg.Debugf(r.verbose, r.logger, "registered tool: %s", name)
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.registry[name]
	return t, ok
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Instructions returns the example envelopes of every tool, sorted by name.
func (r *Registry) Instructions() []string {
	names := r.Names()
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, r.registry[name].Instruction())
	}
	return out
}

// Execute runs call and renders its result as
// "TOOL_RESULT <tool>(<args>) => <json>".
func (r *Registry) Execute(call Call) (string, error) {
	t, ok := r.Lookup(call.Tool)
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", call.Tool)
	}

	result, err := t.Execute(call)
	if err != nil {
		return "", fmt.Errorf("%s: %w", call.Tool, err)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode %s result: %w", call.Tool, err)
	}

	args := make([]string, 0, len(t.RequiredArgs()))
	for _, name := range t.RequiredArgs() {
		args = append(args, call.Arg(name))
	}
	loggerpkg.Debug(r.verbose, r.logger, "tool executed", map[string]any{
		"tool":   call.Tool,
		"args":   args,
		"result": string(payload),
	})
	return fmt.Sprintf("TOOL_RESULT %s(%s) => %s", call.Tool, strings.Join(args, ", "), payload), nil
}
