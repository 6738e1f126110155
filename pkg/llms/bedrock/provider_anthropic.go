package bedrock

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/xlog"
)

// The latest version of the model.
const anthropicLatestVersion = "bedrock-2023-05-31"

// Role attribute for the anthropic message.
const (
	anthropicRoleUser      = "user"
	anthropicRoleAssistant = "assistant"
)

// Type attribute for the anthropic message.
const (
	anthropicTypeText       = "text"
	anthropicTypeToolUse    = "tool_use"
	anthropicTypeToolResult = "tool_result"
)

type anthropicContent struct {
	Type string `json:"type"`
	// Required if type is "text"
	Text string `json:"text,omitempty"`

	ID    string `json:"id,omitempty"`    // Required if type is "tool_use"
	Name  string `json:"name,omitempty"`  // Required if type is "tool_use"
	Input any    `json:"input,omitempty"` // Required if type is "tool_use"

	ToolUseID string `json:"tool_use_id,omitempty"` // Required if type is "tool_result"
	Content   string `json:"content,omitempty"`     // Required if type is "tool_result"
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicTool struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	InputSchema anthropicInputSchema `json:"input_schema"`
}

type anthropicInputSchema struct {
	Type       string   `json:"type"`
	Properties any      `json:"properties,omitempty"`
	Required   []string `json:"required"`
}

type anthropicInput struct {
	AnthropicVersion string              `json:"anthropic_version"`
	MaxTokens        int                 `json:"max_tokens"`
	System           string              `json:"system,omitempty"`
	Messages         []*anthropicMessage `json:"messages"`
	Temperature      float64             `json:"temperature"`
	Tools            []anthropicTool     `json:"tools,omitempty"`
}

type anthropicOutputContent struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicOutput struct {
	Type       string                   `json:"type"`
	Role       string                   `json:"role"`
	Content    []anthropicOutputContent `json:"content"`
	StopReason string                   `json:"stop_reason"`
	Usage      struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

func (l *LLM) anthropicRequest(msgs []chatmodel.Message, list []tools.Tool) ([]byte, error) {
	defs, err := llms.ToolDefinitions(list)
	if err != nil {
		return nil, err
	}

	system, messages, err := anthropicMessages(msgs)
	if err != nil {
		return nil, err
	}

	input := anthropicInput{
		AnthropicVersion: anthropicLatestVersion,
		MaxTokens:        l.opts.MaxTokens,
		System:           system,
		Messages:         messages,
		Temperature:      l.opts.GetTemperature(),
	}
	if input.MaxTokens <= 0 {
		input.MaxTokens = llms.DefaultMaxTokens
	}
	for _, def := range defs {
		input.Tools = append(input.Tools, anthropicTool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: anthropicInputSchema{
				Type:       "object",
				Properties: def.Parameters["properties"],
				Required:   llms.StringList(def.Parameters["required"]),
			},
		})
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, chatmodel.WrapSerializationError(errors.WithStack(err), "unable to encode bedrock request")
	}
	return body, nil
}

func anthropicMessages(msgs []chatmodel.Message) (string, []*anthropicMessage, error) {
	system, turns := llms.Transcript(msgs)

	var res []*anthropicMessage
	add := func(role string, c anthropicContent) {
		if n := len(res); n > 0 && res[n-1].Role == role {
			res[n-1].Content = append(res[n-1].Content, c)
			return
		}
		res = append(res, &anthropicMessage{Role: role, Content: []anthropicContent{c}})
	}

	for _, t := range turns {
		switch t.Kind {
		case llms.TurnUser:
			add(anthropicRoleUser, anthropicContent{Type: anthropicTypeText, Text: t.Text})
		case llms.TurnAssistant:
			add(anthropicRoleAssistant, anthropicContent{Type: anthropicTypeText, Text: t.Text})
		case llms.TurnToolCall:
			input, err := llms.ArgumentsMap(t.Call.Arguments)
			if err != nil {
				return "", nil, err
			}
			add(anthropicRoleAssistant, anthropicContent{
				Type:  anthropicTypeToolUse,
				ID:    t.Call.ID,
				Name:  t.Call.Name,
				Input: input,
			})
		case llms.TurnToolResult:
			add(anthropicRoleUser, anthropicContent{
				Type:      anthropicTypeToolResult,
				ToolUseID: t.Call.ID,
				Content:   t.Text,
			})
		}
	}
	return system, res, nil
}

func parseAnthropicResponse(ctx context.Context, body []byte) (*llms.Response, error) {
	var output anthropicOutput
	if err := json.Unmarshal(body, &output); err != nil {
		return nil, chatmodel.WrapSerializationError(errors.WithStack(err), "unable to decode bedrock response")
	}
	if len(output.Content) == 0 {
		return nil, llms.ErrNoResponse()
	}

	res := &llms.Response{
		StopReason: output.StopReason,
		Usage: llms.Usage{
			InputTokens:  output.Usage.InputTokens,
			OutputTokens: output.Usage.OutputTokens,
		},
	}

	var text []string
	calls := 0
	for _, c := range output.Content {
		switch c.Type {
		case anthropicTypeText:
			text = append(text, c.Text)
		case anthropicTypeToolUse:
			calls++
			if res.ToolCall != nil {
				continue
			}
			args := strings.TrimSpace(string(c.Input))
			if args == "" || args == "null" {
				args = "{}"
			}
			res.ToolCall = &llms.ToolCall{
				ID:        c.ID,
				Name:      c.Name,
				Arguments: args,
			}
		}
	}
	res.Content = strings.Join(text, "")

	if calls > 1 {
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "multiple_tool_calls",
			"count", calls,
			"used", res.ToolCall.Name)
	}
	if res.ToolCall == nil && res.Content == "" {
		return nil, llms.ErrNoResponse()
	}
	return res, nil
}
