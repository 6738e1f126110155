package tools

import (
	"context"

	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llmutils"
	"github.com/invopop/jsonschema"
)

//go:generate mockgen -source=tools.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

// Tool is a capability the model can request to invoke.
type Tool interface {
	// Name returns the name of the Tool, unique within an agent.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the JSON schema object of the tool arguments.
	Parameters() *jsonschema.Schema
	// Execute runs the tool with raw JSON arguments.
	// The tool may read or append messages to the RunContext.
	// If the tool fails to parse the arguments, it returns ErrInvalidInput kind.
	Execute(ctx context.Context, rc *chatmodel.RunContext, args string) (ToolResult, error)
}

// ToolResult is the output of a tool invocation,
// appended to the conversation as a tool message.
type ToolResult struct {
	ToolName string `json:"tool_name" yaml:"tool_name"`
	Output   string `json:"output" yaml:"output"`
}

// Callback receives tool lifecycle events
type Callback interface {
	OnToolStart(ctx context.Context, tool Tool, args string)
	OnToolEnd(ctx context.Context, tool Tool, args string, result ToolResult)
	OnToolError(ctx context.Context, tool Tool, args string, err error)
}

// WrapError returns err as is if it is already classified,
// otherwise marks it as ErrTool failure of the named tool.
func WrapError(name string, err error) error {
	if err == nil {
		return nil
	}
	if chatmodel.KindOf(err) != nil {
		return err
	}
	return chatmodel.WrapToolError(err, "%s failed", name)
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions returns a JSON list of the tools names and descriptions,
// to be used in instructions
func GetDescriptions(list ...Tool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
