// Package googleai implements the Model over the Gemini API.
// See https://ai.google.dev/ for more details.
package googleai

import (
	"context"
	"os"
	"strings"

	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"google.golang.org/genai"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/adk/pkg/llms", "googleai")

const (
	// DefaultModel is used when the model is not set
	DefaultModel = "gemini-2.5-flash"
	// EnvAPIKey is the environment variable with the API key
	EnvAPIKey = "GOOGLE_API_KEY"
)

// GoogleAI is a type that represents a Google AI API client.
type GoogleAI struct {
	client *genai.Client
	model  string
	opts   *llms.Options
}

var _ llms.Model = (*GoogleAI)(nil)

// New creates a new GoogleAI client.
// The API key is read from GOOGLE_API_KEY if not provided.
func New(ctx context.Context, opts ...llms.Option) (*GoogleAI, error) {
	o := llms.NewOptions(opts...)
	apiKey := values.StringsCoalesce(o.APIKey, os.Getenv(EnvAPIKey))
	if apiKey == "" {
		return nil, chatmodel.NewConfigurationError("%s is not set", EnvAPIKey)
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		HTTPClient: o.HTTPClient,
		Backend:    genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: o.BaseURL,
		},
	}
	if o.Timeout > 0 {
		cfg.HTTPOptions.Timeout = genai.Ptr(o.Timeout)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, chatmodel.WrapConfigurationError(err, "unable to create genai client")
	}

	return &GoogleAI{
		client: client,
		model:  values.StringsCoalesce(o.Model, DefaultModel),
		opts:   o,
	}, nil
}

// GetName returns the model name
func (g *GoogleAI) GetName() string {
	return g.model
}

// GetProviderType implements the Model interface.
func (g *GoogleAI) GetProviderType() llms.ProviderType {
	return llms.ProviderGoogleAI
}

// Generate implements the Model interface.
func (g *GoogleAI) Generate(ctx context.Context, rc *chatmodel.RunContext, list []tools.Tool) (*llms.Response, error) {
	history, cfg, err := g.request(rc.Messages(), list)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, history, cfg)
	if err != nil {
		return nil, chatmodel.WrapModelError(err, "genai generate content failed")
	}
	return toResponse(ctx, resp)
}

func (g *GoogleAI) request(msgs []chatmodel.Message, list []tools.Tool) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	defs, err := llms.ToolDefinitions(list)
	if err != nil {
		return nil, nil, err
	}

	system, history, err := toContents(msgs)
	if err != nil {
		return nil, nil, err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(g.opts.GetTemperature())),
	}
	if g.opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.opts.MaxTokens)
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(defs) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(defs))
		for _, def := range defs {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 def.Name,
				Description:          def.Description,
				ParametersJsonSchema: def.Parameters,
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
		cfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAuto,
			},
		}
	}
	return history, cfg, nil
}

// toContents folds turns into user and model contents,
// function responses are sent by the user role.
func toContents(msgs []chatmodel.Message) (string, []*genai.Content, error) {
	system, turns := llms.Transcript(msgs)

	var res []*genai.Content
	add := func(role string, part *genai.Part) {
		if n := len(res); n > 0 && res[n-1].Role == role {
			res[n-1].Parts = append(res[n-1].Parts, part)
			return
		}
		res = append(res, &genai.Content{Role: role, Parts: []*genai.Part{part}})
	}

	for _, t := range turns {
		switch t.Kind {
		case llms.TurnUser:
			add(genai.RoleUser, &genai.Part{Text: t.Text})
		case llms.TurnAssistant:
			add(genai.RoleModel, &genai.Part{Text: t.Text})
		case llms.TurnToolCall:
			args, err := llms.ArgumentsMap(t.Call.Arguments)
			if err != nil {
				return "", nil, err
			}
			add(genai.RoleModel, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   t.Call.ID,
					Name: t.Call.Name,
					Args: args,
				},
			})
		case llms.TurnToolResult:
			add(genai.RoleUser, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:   t.Call.ID,
					Name: t.Call.Name,
					Response: map[string]any{
						"output": t.Text,
					},
				},
			})
		}
	}
	return system, res, nil
}

func toResponse(ctx context.Context, resp *genai.GenerateContentResponse) (*llms.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, llms.ErrNoResponse()
	}

	candidate := resp.Candidates[0]
	res := &llms.Response{
		StopReason: string(candidate.FinishReason),
	}
	if usage := resp.UsageMetadata; usage != nil {
		res.Usage = llms.Usage{
			InputTokens:  int64(usage.PromptTokenCount),
			OutputTokens: int64(usage.CandidatesTokenCount + usage.ToolUsePromptTokenCount + usage.ThoughtsTokenCount),
		}
	}

	var text []string
	calls := 0
	for _, part := range candidate.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			calls++
			if res.ToolCall != nil {
				continue
			}
			args, err := llms.ArgumentsJSON(part.FunctionCall.Args)
			if err != nil {
				return nil, err
			}
			res.ToolCall = &llms.ToolCall{
				// the Gemini API does not always return call IDs
				ID:        values.StringsCoalesce(part.FunctionCall.ID, llms.NewToolCallID()),
				Name:      part.FunctionCall.Name,
				Arguments: args,
			}
		case part.Text != "" && !part.Thought:
			text = append(text, part.Text)
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
