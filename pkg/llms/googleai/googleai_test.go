package googleai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/adk/tools/calculator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

const functionCallResponse = `{
	"candidates": [{
		"content": {
			"role": "model",
			"parts": [{"functionCall": {"name": "calculator", "args": {"a": 2, "b": 2, "operation": "add"}}}]
		},
		"finishReason": "STOP"
	}],
	"usageMetadata": {"promptTokenCount": 50, "candidatesTokenCount": 10, "totalTokenCount": 60}
}`

const answerResponse = `{
	"candidates": [{
		"content": {"role": "model", "parts": [{"text": "The answer is 4"}]},
		"finishReason": "STOP"
	}],
	"usageMetadata": {"promptTokenCount": 70, "candidatesTokenCount": 5, "totalTokenCount": 75}
}`

func newServer(t *testing.T, bodies *[]string, responses ...string) *httptest.Server {
	i := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		body, _ := io.ReadAll(r.Body)
		*bodies = append(*bodies, string(body))

		w.Header().Set("Content-Type", "application/json")
		if i >= len(responses) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"boom","status":"INVALID_ARGUMENT"}}`))
			return
		}
		_, _ = w.Write([]byte(responses[i]))
		i++
	}))
}

func TestGenerate(t *testing.T) {
	var bodies []string
	server := newServer(t, &bodies, functionCallResponse, answerResponse)
	defer server.Close()

	ctx := context.Background()
	m, err := New(ctx,
		llms.WithAPIKey("test-key"),
		llms.WithBaseURL(server.URL),
		llms.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, m.GetName())
	assert.Equal(t, llms.ProviderGoogleAI, m.GetProviderType())

	rc := chatmodel.NewRunContext("", nil)
	require.NoError(t, rc.AddMessage(chatmodel.RoleSystem, "helper"))
	require.NoError(t, rc.AddMessage(chatmodel.RoleUser, "2+2?"))

	list := []tools.Tool{calculator.New()}
	resp, err := m.Generate(ctx, rc, list)
	require.NoError(t, err)
	require.True(t, resp.IsToolCall())
	assert.Equal(t, "calculator", resp.ToolCall.Name)
	assert.True(t, strings.HasPrefix(resp.ToolCall.ID, "call_"))
	assert.JSONEq(t, `{"a":2,"b":2,"operation":"add"}`, resp.ToolCall.Arguments)
	assert.Equal(t, "STOP", resp.StopReason)
	assert.Equal(t, llms.Usage{InputTokens: 50, OutputTokens: 10}, resp.Usage)

	req := gjson.Parse(bodies[0])
	assert.Equal(t, "helper", req.Get("systemInstruction.parts.0.text").String())
	assert.Equal(t, "user", req.Get("contents.0.role").String())
	assert.Equal(t, "2+2?", req.Get("contents.0.parts.0.text").String())
	assert.Equal(t, "calculator", req.Get("tools.0.functionDeclarations.0.name").String())

	require.NoError(t, rc.Append(chatmodel.Message{
		Role:       chatmodel.RoleTool,
		ToolName:   "calculator",
		Content:    "4",
		ToolCallID: resp.ToolCall.ID,
		Arguments:  resp.ToolCall.Arguments,
	}))

	resp, err = m.Generate(ctx, rc, list)
	require.NoError(t, err)
	assert.False(t, resp.IsToolCall())
	assert.Equal(t, "The answer is 4", resp.Content)

	req = gjson.Parse(bodies[1])
	contents := req.Get("contents").Array()
	require.Len(t, contents, 3)
	assert.Equal(t, "model", contents[1].Get("role").String())
	assert.Equal(t, "calculator", contents[1].Get("parts.0.functionCall.name").String())
	assert.Equal(t, "user", contents[2].Get("role").String())
	assert.Equal(t, "4", contents[2].Get("parts.0.functionResponse.response.output").String())

	_, err = m.Generate(ctx, rc, list)
	require.Error(t, err)
	assert.True(t, errors.Is(err, chatmodel.ErrModel))
}

func TestToResponse(t *testing.T) {
	ctx := context.Background()

	_, err := toResponse(ctx, nil)
	assert.EqualError(t, err, "model error: no response")

	_, err = toResponse(ctx, &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
	})
	assert.EqualError(t, err, "model error: no response")

	resp, err := toResponse(ctx, &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{
					{Text: "thinking", Thought: true},
					{FunctionCall: &genai.FunctionCall{ID: "c1", Name: "first"}},
					{FunctionCall: &genai.FunctionCall{ID: "c2", Name: "second"}},
				},
			},
			FinishReason: genai.FinishReasonStop,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, &llms.ToolCall{ID: "c1", Name: "first", Arguments: "{}"}, resp.ToolCall)
	assert.Empty(t, resp.Content)
}

func TestToContents(t *testing.T) {
	system, contents, err := toContents([]chatmodel.Message{
		{Role: chatmodel.RoleSystem, Content: "sys"},
		{Role: chatmodel.RoleUser, Content: "q"},
		{Role: chatmodel.RoleAssistant, Content: "a"},
		{Role: chatmodel.RoleTool, ToolName: "t", ToolCallID: "id1", Content: "out"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sys", system)
	require.Len(t, contents, 3)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	require.Len(t, contents[1].Parts, 2)
	assert.Equal(t, "id1", contents[1].Parts[1].FunctionCall.ID)
	assert.Empty(t, contents[1].Parts[1].FunctionCall.Args)
	assert.Equal(t, "id1", contents[2].Parts[0].FunctionResponse.ID)
}

func TestNew_NoKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	_, err := New(context.Background())
	assert.EqualError(t, err, "configuration error: GOOGLE_API_KEY is not set")
}
