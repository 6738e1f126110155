package tools

import (
	"context"
	"regexp"

	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/schema"
	"github.com/invopop/jsonschema"
)

// ContextParam is the reserved name of the leading context parameter
const ContextParam = "context"

// Param declares a tool parameter
type Param struct {
	Name        string
	Kind        Kind
	Description string
}

// IsContext returns true if the parameter is the run context,
// which is excluded from the schema
func (p Param) IsContext() bool {
	return p.Name == ContextParam || p.Kind == KindRunContext
}

// Handler is the tool logic of a derived tool.
// Args holds the extracted values in declaration order.
type Handler func(ctx context.Context, rc *chatmodel.RunContext, args Args) (string, error)

// DerivedTool is a Tool derived from a parameter table and a handler.
// Both the schema and the argument extraction come from the same table.
type DerivedTool struct {
	name        string
	description string
	params      []Param
	parameters  *jsonschema.Schema
	handler     Handler
}

var _ Tool = (*DerivedTool)(nil)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateName returns ConfigurationError if the name
// is not accepted as a tool name by model providers
func ValidateName(name string) error {
	if !nameRegex.MatchString(name) {
		return chatmodel.NewConfigurationError("invalid tool name: %q", name)
	}
	return nil
}

// Define returns a tool with parameters declared by the table,
// in declaration order, all of them required.
func Define(name, description string, params []Param, h Handler) (*DerivedTool, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, chatmodel.NewConfigurationError("tool %s has no handler", name)
	}

	var props []schema.Property
	seen := map[string]bool{}
	for _, p := range params {
		if p.Name == "" {
			return nil, chatmodel.NewConfigurationError("tool %s: parameter name is empty", name)
		}
		if seen[p.Name] {
			return nil, chatmodel.NewConfigurationError("tool %s: duplicate parameter %s", name, p.Name)
		}
		seen[p.Name] = true
		if p.IsContext() {
			continue
		}
		props = append(props, schema.Property{
			Name:        p.Name,
			Type:        p.Kind.JSONType(),
			Description: p.Description,
		})
	}

	return &DerivedTool{
		name:        name,
		description: description,
		params:      params,
		parameters:  schema.Object(props...),
		handler:     h,
	}, nil
}

// MustDefine is like Define but panics on error,
// to be used with package level tool variables
func MustDefine(name, description string, params []Param, h Handler) *DerivedTool {
	t, err := Define(name, description, params, h)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the name of the tool
func (t *DerivedTool) Name() string {
	return t.name
}

// Description returns the description of the tool
func (t *DerivedTool) Description() string {
	return t.description
}

// Parameters returns the arguments schema
func (t *DerivedTool) Parameters() *jsonschema.Schema {
	return t.parameters
}

// Params returns the declared parameters
func (t *DerivedTool) Params() []Param {
	return append([]Param(nil), t.params...)
}

// Execute extracts every declared parameter from args and calls the handler
func (t *DerivedTool) Execute(ctx context.Context, rc *chatmodel.RunContext, args string) (ToolResult, error) {
	a, err := Extract(t.params, args)
	if err != nil {
		return ToolResult{}, err
	}
	out, err := t.handler(ctx, rc, a)
	if err != nil {
		return ToolResult{}, WrapError(t.name, err)
	}
	return ToolResult{ToolName: t.name, Output: out}, nil
}
