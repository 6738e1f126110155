package bedrock

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/adk/tools/calculator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeClient struct {
	inputs    []*bedrockruntime.InvokeModelInput
	responses []string
	err       error
}

func (f *fakeClient) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	body := f.responses[0]
	f.responses = f.responses[1:]
	return &bedrockruntime.InvokeModelOutput{Body: []byte(body)}, nil
}

func TestGenerate(t *testing.T) {
	client := &fakeClient{
		responses: []string{
			`{"type":"message","role":"assistant","content":[{"type":"tool_use","id":"toolu_1","name":"calculator","input":{"a":2,"b":2,"operation":"add"}}],"stop_reason":"tool_use","usage":{"input_tokens":50,"output_tokens":10}}`,
			`{"type":"message","role":"assistant","content":[{"type":"text","text":"The answer is 4"}],"stop_reason":"end_turn","usage":{"input_tokens":70,"output_tokens":5}}`,
		},
	}

	m, err := NewWithClient(client)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, m.GetName())
	assert.Equal(t, llms.ProviderBedrock, m.GetProviderType())

	ctx := context.Background()
	rc := chatmodel.NewRunContext("", nil)
	require.NoError(t, rc.AddMessage(chatmodel.RoleSystem, "helper"))
	require.NoError(t, rc.AddMessage(chatmodel.RoleUser, "2+2?"))

	list := []tools.Tool{calculator.New()}
	resp, err := m.Generate(ctx, rc, list)
	require.NoError(t, err)
	require.True(t, resp.IsToolCall())
	assert.Equal(t, "toolu_1", resp.ToolCall.ID)
	assert.JSONEq(t, `{"a":2,"b":2,"operation":"add"}`, resp.ToolCall.Arguments)
	assert.Equal(t, llms.Usage{InputTokens: 50, OutputTokens: 10}, resp.Usage)

	in := client.inputs[0]
	assert.Equal(t, DefaultModel, aws.ToString(in.ModelId))
	assert.Equal(t, "application/json", aws.ToString(in.ContentType))
	req := gjson.ParseBytes(in.Body)
	assert.Equal(t, anthropicLatestVersion, req.Get("anthropic_version").String())
	assert.Equal(t, int64(llms.DefaultMaxTokens), req.Get("max_tokens").Int())
	assert.Equal(t, "helper", req.Get("system").String())
	assert.Equal(t, "calculator", req.Get("tools.0.name").String())
	assert.Equal(t, `["a","b","operation"]`, req.Get("tools.0.input_schema.required").Raw)

	require.NoError(t, rc.Append(chatmodel.Message{
		Role:       chatmodel.RoleTool,
		ToolName:   "calculator",
		Content:    "4",
		ToolCallID: resp.ToolCall.ID,
		Arguments:  resp.ToolCall.Arguments,
	}))

	resp, err = m.Generate(ctx, rc, list)
	require.NoError(t, err)
	assert.Equal(t, "The answer is 4", resp.Content)
	assert.Equal(t, "end_turn", resp.StopReason)

	req = gjson.ParseBytes(client.inputs[1].Body)
	msgs := req.Get("messages").Array()
	require.Len(t, msgs, 3)
	assert.Equal(t, "tool_use", msgs[1].Get("content.0.type").String())
	assert.Equal(t, "toolu_1", msgs[2].Get("content.0.tool_use_id").String())
	assert.Equal(t, "4", msgs[2].Get("content.0.content").String())

	client.err = errors.New("throttled")
	_, err = m.Generate(ctx, rc, list)
	require.Error(t, err)
	assert.True(t, errors.Is(err, chatmodel.ErrModel))
}

func TestParseAnthropicResponse(t *testing.T) {
	ctx := context.Background()

	_, err := parseAnthropicResponse(ctx, []byte(`not json`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, chatmodel.ErrSerialization))

	_, err = parseAnthropicResponse(ctx, []byte(`{"content":[]}`))
	assert.EqualError(t, err, "model error: no response")

	resp, err := parseAnthropicResponse(ctx, []byte(`{"content":[
		{"type":"tool_use","id":"t1","name":"first"},
		{"type":"tool_use","id":"t2","name":"second","input":{}}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, &llms.ToolCall{ID: "t1", Name: "first", Arguments: "{}"}, resp.ToolCall)
}

func TestNewWithClient_Unsupported(t *testing.T) {
	_, err := NewWithClient(&fakeClient{}, llms.WithModel("amazon.titan-text-lite-v1"))
	assert.EqualError(t, err, `configuration error: unsupported bedrock model provider: "amazon"`)
}

func TestNew_BadKey(t *testing.T) {
	_, err := New(context.Background(), llms.WithAPIKey("nocolon"))
	assert.EqualError(t, err, "configuration error: bedrock API key must be in ACCESS_KEY_ID:SECRET_ACCESS_KEY format")
}

func TestNew(t *testing.T) {
	m, err := New(context.Background(),
		llms.WithAPIKey("AKID:SECRET"),
		llms.WithRegion("us-west-2"),
		llms.WithBaseURL("http://localhost:1"),
	)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, m.GetName())
}

func TestGetProvider(t *testing.T) {
	tests := []struct {
		name     string
		modelID  string
		expected string
	}{
		{
			name:     "Direct Anthropic model ID",
			modelID:  "anthropic.claude-3-sonnet-20240229-v1:0",
			expected: "anthropic",
		},
		{
			name:     "Inference Profile with US region",
			modelID:  "us.anthropic.claude-3-5-sonnet-20241022-v2:0",
			expected: "anthropic",
		},
		{
			name:     "Direct Amazon model ID",
			modelID:  "amazon.titan-text-premier-v1:0",
			expected: "amazon",
		},
		{
			name:     "Inference Profile with Meta",
			modelID:  "us.meta.llama3-2-11b-instruct-v1:0",
			expected: "meta",
		},
		{
			name:     "Dotted version",
			modelID:  "anthropic.claude-v2.1",
			expected: "anthropic",
		},
		{
			name:     "Global profile",
			modelID:  "global.anthropic.claude-sonnet-4-20250514-v1:0",
			expected: "anthropic",
		},
		{
			name:     "Single part model ID",
			modelID:  "anthropic",
			expected: "anthropic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getProvider(tt.modelID))
		})
	}
}
