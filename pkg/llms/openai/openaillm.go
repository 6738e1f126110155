// Package openai implements the Model over the OpenAI chat completions API.
package openai

import (
	"context"
	"os"

	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	oai "github.com/openai/openai-go/v3"
	oaiopt "github.com/openai/openai-go/v3/option"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/adk/pkg/llms", "openai")

const (
	// DefaultModel is used when the model is not set
	DefaultModel = "gpt-4o"
	// EnvAPIKey is the environment variable with the API key
	EnvAPIKey = "OPENAI_API_KEY"
)

// LLM is the OpenAI Model
type LLM struct {
	client oai.Client
	model  string
	opts   *llms.Options
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM.
// The API key is read from OPENAI_API_KEY if not provided.
func New(opts ...llms.Option) (*LLM, error) {
	o := llms.NewOptions(opts...)
	apiKey := values.StringsCoalesce(o.APIKey, os.Getenv(EnvAPIKey))
	if apiKey == "" {
		return nil, chatmodel.NewConfigurationError("%s is not set", EnvAPIKey)
	}

	reqOpts := []oaiopt.RequestOption{
		oaiopt.WithAPIKey(apiKey),
		oaiopt.WithMaxRetries(o.MaxRetries),
	}
	if o.BaseURL != "" {
		reqOpts = append(reqOpts, oaiopt.WithBaseURL(o.BaseURL))
	}
	if o.HTTPClient != nil {
		reqOpts = append(reqOpts, oaiopt.WithHTTPClient(o.HTTPClient))
	}
	if o.Timeout > 0 {
		reqOpts = append(reqOpts, oaiopt.WithRequestTimeout(o.Timeout))
	}

	return &LLM{
		client: oai.NewClient(reqOpts...),
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
	return llms.ProviderOpenAI
}

// Generate implements the Model interface.
func (o *LLM) Generate(ctx context.Context, rc *chatmodel.RunContext, list []tools.Tool) (*llms.Response, error) {
	params, err := o.request(rc.Messages(), list)
	if err != nil {
		return nil, err
	}

	resp, err := o.client.Chat.Completions.New(ctx, *params)
	if err != nil {
		return nil, chatmodel.WrapModelError(err, "openai chat completion failed")
	}
	return toResponse(ctx, resp)
}

func (o *LLM) request(msgs []chatmodel.Message, list []tools.Tool) (*oai.ChatCompletionNewParams, error) {
	defs, err := llms.ToolDefinitions(list)
	if err != nil {
		return nil, err
	}

	params := &oai.ChatCompletionNewParams{
		Model:       oai.ChatModel(o.model),
		Messages:    toMessages(msgs),
		Temperature: oai.Float(o.opts.GetTemperature()),
	}
	if o.opts.MaxTokens > 0 {
		params.MaxCompletionTokens = oai.Int(int64(o.opts.MaxTokens))
	}
	if len(defs) > 0 {
		for _, def := range defs {
			params.Tools = append(params.Tools, oai.ChatCompletionFunctionTool(oai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: oai.String(def.Description),
				Parameters:  oai.FunctionParameters(def.Parameters),
			}))
		}
		params.ToolChoice = oai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: oai.String(string(oai.ChatCompletionToolChoiceOptionAutoAuto)),
		}
		params.ParallelToolCalls = oai.Bool(false)
	}
	return params, nil
}

func toMessages(msgs []chatmodel.Message) []oai.ChatCompletionMessageParamUnion {
	system, turns := llms.Transcript(msgs)

	var res []oai.ChatCompletionMessageParamUnion
	if system != "" {
		res = append(res, oai.SystemMessage(system))
	}
	for _, t := range turns {
		switch t.Kind {
		case llms.TurnUser:
			res = append(res, oai.UserMessage(t.Text))
		case llms.TurnAssistant:
			res = append(res, oai.AssistantMessage(t.Text))
		case llms.TurnToolCall:
			res = append(res, oai.ChatCompletionMessageParamUnion{
				OfAssistant: &oai.ChatCompletionAssistantMessageParam{
					ToolCalls: []oai.ChatCompletionMessageToolCallUnionParam{
						{
							OfFunction: &oai.ChatCompletionMessageFunctionToolCallParam{
								ID: t.Call.ID,
								Function: oai.ChatCompletionMessageFunctionToolCallFunctionParam{
									Name:      t.Call.Name,
									Arguments: t.Call.Arguments,
								},
							},
						},
					},
				},
			})
		case llms.TurnToolResult:
			res = append(res, oai.ToolMessage(t.Text, t.Call.ID))
		}
	}
	return res
}

func toResponse(ctx context.Context, resp *oai.ChatCompletion) (*llms.Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, llms.ErrNoResponse()
	}

	choice := resp.Choices[0]
	res := &llms.Response{
		Content:    choice.Message.Content,
		StopReason: choice.FinishReason,
		Usage: llms.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}

	if n := len(choice.Message.ToolCalls); n > 0 {
		if n > 1 {
			logger.ContextKV(ctx, xlog.WARNING,
				"reason", "multiple_tool_calls",
				"count", n,
				"used", choice.Message.ToolCalls[0].Function.Name)
		}
		tc := choice.Message.ToolCalls[0]
		res.ToolCall = &llms.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	} else if res.Content == "" {
		return nil, llms.ErrNoResponse()
	}

	return res, nil
}
