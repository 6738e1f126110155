package llms

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llmutils"
	"github.com/effective-security/adk/pkg/schema"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/x/values"
	"github.com/google/uuid"
)

// TurnKind is the kind of a conversation turn
type TurnKind int

// Turn kinds
const (
	TurnUser TurnKind = iota
	TurnAssistant
	TurnToolCall
	TurnToolResult
)

// Turn is a provider neutral conversation entry
type Turn struct {
	Kind TurnKind
	// Text is the message content, or the tool output for TurnToolResult
	Text string
	// Call is set for TurnToolCall and TurnToolResult
	Call *ToolCall
}

// Transcript splits the conversation into the system prompt and the turns.
// System messages are joined, each tool message produces a tool call turn
// followed by the tool result turn with the same call ID.
func Transcript(msgs []chatmodel.Message) (string, []Turn) {
	var system []string
	var turns []Turn

	for _, m := range msgs {
		switch m.Role {
		case chatmodel.RoleSystem:
			system = append(system, m.Content)
		case chatmodel.RoleUser:
			turns = append(turns, Turn{Kind: TurnUser, Text: m.Content})
		case chatmodel.RoleAssistant:
			turns = append(turns, Turn{Kind: TurnAssistant, Text: m.Content})
		case chatmodel.RoleTool:
			call := &ToolCall{
				ID:        values.StringsCoalesce(m.ToolCallID, NewToolCallID()),
				Name:      m.ToolName,
				Arguments: values.StringsCoalesce(m.Arguments, "{}"),
			}
			turns = append(turns,
				Turn{Kind: TurnToolCall, Call: call},
				Turn{Kind: TurnToolResult, Call: call, Text: m.Content},
			)
		}
	}
	return strings.Join(system, "\n\n"), turns
}

// NewToolCallID returns a call ID for tool messages recorded without one
func NewToolCallID() string {
	return "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ToolDefinition is a provider neutral tool descriptor
type ToolDefinition struct {
	Name        string
	Description string
	// Parameters is the JSON schema object of the arguments
	Parameters map[string]any
}

// ToolDefinitions converts tools into definitions
func ToolDefinitions(list []tools.Tool) ([]ToolDefinition, error) {
	defs := make([]ToolDefinition, 0, len(list))
	for _, t := range list {
		params, err := schema.ToMap(t.Parameters())
		if err != nil {
			return nil, chatmodel.WrapSerializationError(err, "invalid parameters of tool %s", t.Name())
		}
		defs = append(defs, ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  params,
		})
	}
	return defs, nil
}

// ArgumentsMap decodes raw tool call arguments into an object,
// empty arguments produce an empty object.
func ArgumentsMap(raw string) (map[string]any, error) {
	m := map[string]any{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return m, nil
	}
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(raw)), &m); err != nil {
		return nil, chatmodel.WrapSerializationError(err, "invalid tool arguments")
	}
	return m, nil
}

// ArgumentsJSON encodes tool call arguments received as an object
func ArgumentsJSON(args any) (string, error) {
	if args == nil {
		return "{}", nil
	}
	js, err := json.Marshal(args)
	if err != nil {
		return "", chatmodel.WrapSerializationError(errors.WithStack(err), "invalid tool arguments")
	}
	if string(js) == "null" {
		return "{}", nil
	}
	return string(js), nil
}

// StringList returns schema "required" value as a list of strings
func StringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		res := make([]string, 0, len(list))
		for _, s := range list {
			if str, ok := s.(string); ok {
				res = append(res, str)
			}
		}
		return res
	}
	return nil
}
