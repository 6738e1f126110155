// Package anthropic implements the Model over the Anthropic Messages API.
package anthropic

import (
	"context"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/adk/pkg/llms", "anthropic")

const (
	// DefaultModel is used when the model is not set
	DefaultModel = "claude-sonnet-4-0"
	// EnvAPIKey is the environment variable with the API key
	EnvAPIKey = "ANTHROPIC_API_KEY"
)

// LLM is the Anthropic Model
type LLM struct {
	client anthropic.Client
	model  string
	opts   *llms.Options
}

var _ llms.Model = (*LLM)(nil)

// New creates a new Anthropic LLM client using the official Anthropic SDK.
// If no API key is provided via options, it is read from ANTHROPIC_API_KEY.
func New(opts ...llms.Option) (*LLM, error) {
	o := llms.NewOptions(opts...)
	apiKey := values.StringsCoalesce(o.APIKey, os.Getenv(EnvAPIKey))
	if apiKey == "" {
		return nil, chatmodel.NewConfigurationError("%s is not set", EnvAPIKey)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(o.MaxRetries),
	}
	if o.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.HTTPClient))
	}
	if o.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(o.Timeout))
	}

	return &LLM{
		client: anthropic.NewClient(reqOpts...),
		model:  values.StringsCoalesce(o.Model, DefaultModel),
		opts:   o,
	}, nil
}

// GetName returns the model name
func (o *LLM) GetName() string {
	return o.model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderAnthropic
}

// Generate implements the Model interface.
func (o *LLM) Generate(ctx context.Context, rc *chatmodel.RunContext, list []tools.Tool) (*llms.Response, error) {
	params, err := o.request(rc.Messages(), list)
	if err != nil {
		return nil, err
	}

	result, err := o.client.Messages.New(ctx, *params)
	if err != nil {
		return nil, chatmodel.WrapModelError(err, "anthropic message failed")
	}
	return toResponse(ctx, result)
}

func (o *LLM) request(msgs []chatmodel.Message, list []tools.Tool) (*anthropic.MessageNewParams, error) {
	defs, err := llms.ToolDefinitions(list)
	if err != nil {
		return nil, err
	}

	system, messages, err := toMessages(msgs)
	if err != nil {
		return nil, err
	}

	maxTokens := o.opts.MaxTokens
	if maxTokens <= 0 {
		// required by the API
		maxTokens = llms.DefaultMaxTokens
	}

	params := &anthropic.MessageNewParams{
		Model:       anthropic.Model(o.model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(o.opts.GetTemperature()),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(defs) > 0 {
		for _, def := range defs {
			params.Tools = append(params.Tools, anthropic.ToolUnionParam{
				OfTool: &anthropic.ToolParam{
					Name:        def.Name,
					Description: anthropic.String(def.Description),
					InputSchema: anthropic.ToolInputSchemaParam{
						Properties: def.Parameters["properties"],
						Required:   llms.StringList(def.Parameters["required"]),
					},
				},
			})
		}
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{
				DisableParallelToolUse: anthropic.Bool(true),
			},
		}
	}
	return params, nil
}

// toMessages folds turns into alternating user and assistant messages,
// tool results are sent by the user role.
func toMessages(msgs []chatmodel.Message) (string, []anthropic.MessageParam, error) {
	system, turns := llms.Transcript(msgs)

	var res []anthropic.MessageParam
	add := func(role anthropic.MessageParamRole, block anthropic.ContentBlockParamUnion) {
		if n := len(res); n > 0 && res[n-1].Role == role {
			res[n-1].Content = append(res[n-1].Content, block)
			return
		}
		res = append(res, anthropic.MessageParam{
			Role:    role,
			Content: []anthropic.ContentBlockParamUnion{block},
		})
	}

	for _, t := range turns {
		switch t.Kind {
		case llms.TurnUser:
			add(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(t.Text))
		case llms.TurnAssistant:
			add(anthropic.MessageParamRoleAssistant, anthropic.NewTextBlock(t.Text))
		case llms.TurnToolCall:
			input, err := llms.ArgumentsMap(t.Call.Arguments)
			if err != nil {
				return "", nil, err
			}
			add(anthropic.MessageParamRoleAssistant, anthropic.NewToolUseBlock(t.Call.ID, input, t.Call.Name))
		case llms.TurnToolResult:
			add(anthropic.MessageParamRoleUser, anthropic.NewToolResultBlock(t.Call.ID, t.Text, false))
		}
	}
	return system, res, nil
}

func toResponse(ctx context.Context, result *anthropic.Message) (*llms.Response, error) {
	if result == nil || len(result.Content) == 0 {
		return nil, llms.ErrNoResponse()
	}

	res := &llms.Response{
		StopReason: string(result.StopReason),
		Usage: llms.Usage{
			InputTokens:  result.Usage.InputTokens,
			OutputTokens: result.Usage.OutputTokens,
		},
	}

	var text []string
	calls := 0
	for _, block := range result.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text = append(text, b.Text)
		case anthropic.ToolUseBlock:
			calls++
			if res.ToolCall != nil {
				continue
			}
			args := strings.TrimSpace(string(b.Input))
			if args == "" || args == "null" {
				args = "{}"
			}
			res.ToolCall = &llms.ToolCall{
				ID:        b.ID,
				Name:      b.Name,
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
