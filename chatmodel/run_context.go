package chatmodel

import (
	"context"
	"strconv"

	"github.com/effective-security/x/values"
	"github.com/effective-security/xdb/pkg/flake"
)

// RunContext holds the base Context and the ordered conversation
// of exactly one run. It is owned by the agent loop and lent to one
// tool invocation at a time, it is not safe for concurrent use.
type RunContext struct {
	id       string
	context  Context
	messages []Message
}

// NewRunContext returns a RunContext for a new run.
// If runID is empty, a new ID is generated.
func NewRunContext(runID string, base Context) *RunContext {
	return &RunContext{
		id:      values.StringsCoalesce(runID, NewRunID()),
		context: base.Clone(),
	}
}

// ID returns the run ID
func (rc *RunContext) ID() string {
	return rc.id
}

// Context returns the run's side data.
func (rc *RunContext) Context() Context {
	return rc.context
}

// AddMessage appends a system, user or assistant message
func (rc *RunContext) AddMessage(role Role, content string) error {
	return rc.Append(Message{Role: role, Content: content})
}

// AddToolMessage appends a tool result message
func (rc *RunContext) AddToolMessage(toolName, content string) error {
	return rc.Append(Message{Role: RoleTool, ToolName: toolName, Content: content})
}

// Append validates and appends the message
func (rc *RunContext) Append(m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	rc.messages = append(rc.messages, m)
	return nil
}

// Messages returns a copy of the conversation
func (rc *RunContext) Messages() []Message {
	return append([]Message(nil), rc.messages...)
}

// Len returns the number of messages
func (rc *RunContext) Len() int {
	return len(rc.messages)
}

// LastMessage returns the last message of the conversation
func (rc *RunContext) LastMessage() (Message, bool) {
	if len(rc.messages) == 0 {
		return Message{}, false
	}
	return rc.messages[len(rc.messages)-1], true
}

// ToolMessages returns tool result messages in order
func (rc *RunContext) ToolMessages() []Message {
	var list []Message
	for _, m := range rc.messages {
		if m.IsTool() {
			list = append(list, m)
		}
	}
	return list
}

type contextKey int

const (
	keyRunContext contextKey = iota
)

// WithRunContext returns a new context with RunContext value
func WithRunContext(ctx context.Context, rc *RunContext) context.Context {
	return context.WithValue(ctx, keyRunContext, rc)
}

// GetRunContext retrieves the RunContext from the context
func GetRunContext(ctx context.Context) *RunContext {
	if v, ok := ctx.Value(keyRunContext).(*RunContext); ok {
		return v
	}
	return nil
}

// GetRunID retrieves the run ID from the provided context.
// If the context does not contain a RunContext, it returns an empty string.
func GetRunID(ctx context.Context) string {
	if v := GetRunContext(ctx); v != nil {
		return v.ID()
	}
	return ""
}

// NewRunID generates a new run ID using the flake ID generator.
func NewRunID() string {
	return strconv.FormatUint(flake.DefaultIDGenerator.NextID(), 10)
}
