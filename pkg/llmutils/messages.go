package llmutils

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/effective-security/adk/chatmodel"
)

// PrintMessages is a debugging helper for the conversation.
// If filter is provided, only messages with the given roles are printed.
func PrintMessages(w io.Writer, msgs []chatmodel.Message, filter ...chatmodel.Role) {
	for _, m := range msgs {
		if len(filter) > 0 && !slices.Contains(filter, m.Role) {
			continue
		}
		role := strings.ToUpper(m.Role.String())
		if m.IsTool() {
			fmt.Fprintf(w, "%s[%s]: %s\n", role, m.ToolName, m.Content)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", role, m.Content)
	}
}

// CountMessagesContentSize counts the size of the content in the messages
func CountMessagesContentSize(msgs []chatmodel.Message) uint64 {
	var size uint64
	for _, m := range msgs {
		size += uint64(len(m.Role))
		size += uint64(len(m.Content))
		size += uint64(len(m.ToolName))
		size += uint64(len(m.ToolCallID))
		size += uint64(len(m.Arguments))
	}
	return size
}
