package chatmodel

// Role of the message author
type Role string

// Roles
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// IsValid returns true if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Message is an entry of the conversation ledger
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
	// ToolName is required for RoleTool messages
	ToolName string `json:"tool_name,omitempty" yaml:"tool_name,omitempty"`
	// ToolCallID is the provider's ID of the call that produced a tool message
	ToolCallID string `json:"tool_call_id,omitempty" yaml:"tool_call_id,omitempty"`
	// Arguments are the raw JSON arguments the tool was called with
	Arguments string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// Validate returns ContextError if the message is malformed
func (m Message) Validate() error {
	if !m.Role.IsValid() {
		return NewContextError("unsupported role: %q", m.Role)
	}
	if m.Role == RoleTool && m.ToolName == "" {
		return NewContextError("tool message requires tool name")
	}
	return nil
}

// IsTool returns true if the message is a tool result
func (m Message) IsTool() bool {
	return m.Role == RoleTool
}
