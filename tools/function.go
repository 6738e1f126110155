package tools

import (
	"context"

	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/schema"
	"github.com/invopop/jsonschema"
)

// Func is a closure of the Tool.Execute shape
type Func func(ctx context.Context, rc *chatmodel.RunContext, args string) (ToolResult, error)

// FunctionTool is a Tool backed by a closure
type FunctionTool struct {
	name        string
	description string
	parameters  *jsonschema.Schema
	fn          Func
}

var _ Tool = (*FunctionTool)(nil)

// NewFunctionTool returns a Tool that calls fn.
// If parameters is nil, an empty object schema is used.
func NewFunctionTool(name, description string, parameters *jsonschema.Schema, fn Func) *FunctionTool {
	if parameters == nil {
		parameters = schema.Empty()
	}
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// Name returns the name of the tool
func (t *FunctionTool) Name() string {
	return t.name
}

// Description returns the description of the tool
func (t *FunctionTool) Description() string {
	return t.description
}

// Parameters returns the arguments schema
func (t *FunctionTool) Parameters() *jsonschema.Schema {
	return t.parameters
}

// Execute calls the closure.
// The result is always named after the tool.
func (t *FunctionTool) Execute(ctx context.Context, rc *chatmodel.RunContext, args string) (ToolResult, error) {
	if t.fn == nil {
		return ToolResult{}, chatmodel.NewConfigurationError("tool %s has no function", t.name)
	}
	res, err := t.fn(ctx, rc, args)
	if err != nil {
		return ToolResult{}, WrapError(t.name, err)
	}
	res.ToolName = t.name
	return res, nil
}
