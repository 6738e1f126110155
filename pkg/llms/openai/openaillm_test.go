package openai

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
)

const toolCallResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o",
	"choices": [{
		"index": 0,
		"finish_reason": "tool_calls",
		"message": {
			"role": "assistant",
			"content": null,
			"refusal": null,
			"tool_calls": [{
				"id": "call_abc",
				"type": "function",
				"function": {"name": "calculator", "arguments": "{\"a\":2,\"b\":2,\"operation\":\"add\"}"}
			}]
		}
	}],
	"usage": {"prompt_tokens": 50, "completion_tokens": 10, "total_tokens": 60}
}`

const answerResponse = `{
	"id": "chatcmpl-2",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "The answer is 4", "refusal": null}
	}],
	"usage": {"prompt_tokens": 70, "completion_tokens": 5, "total_tokens": 75}
}`

func newServer(t *testing.T, bodies *[]string, responses ...string) *httptest.Server {
	i := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		*bodies = append(*bodies, string(body))

		if i >= len(responses) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responses[i]))
		i++
	}))
}

func TestGenerate(t *testing.T) {
	var bodies []string
	server := newServer(t, &bodies, toolCallResponse, answerResponse)
	defer server.Close()

	m, err := New(
		llms.WithAPIKey("test-key"),
		llms.WithBaseURL(server.URL),
		llms.WithHTTPClient(server.Client()),
		llms.WithMaxRetries(0),
	)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, m.GetName())
	assert.Equal(t, llms.ProviderOpenAI, m.GetProviderType())

	ctx := context.Background()
	rc := chatmodel.NewRunContext("", nil)
	require.NoError(t, rc.AddMessage(chatmodel.RoleSystem, "helper"))
	require.NoError(t, rc.AddMessage(chatmodel.RoleUser, "2+2?"))

	list := []tools.Tool{calculator.New()}
	resp, err := m.Generate(ctx, rc, list)
	require.NoError(t, err)
	require.True(t, resp.IsToolCall())
	assert.Equal(t, &llms.ToolCall{ID: "call_abc", Name: "calculator", Arguments: `{"a":2,"b":2,"operation":"add"}`}, resp.ToolCall)
	assert.Equal(t, llms.Usage{InputTokens: 50, OutputTokens: 10}, resp.Usage)
	assert.Equal(t, "tool_calls", resp.StopReason)

	req := gjson.Parse(bodies[0])
	assert.Equal(t, "gpt-4o", req.Get("model").String())
	assert.Equal(t, 0.7, req.Get("temperature").Float())
	assert.Equal(t, "auto", req.Get("tool_choice").String())
	assert.False(t, req.Get("parallel_tool_calls").Bool())
	assert.Equal(t, "system", req.Get("messages.0.role").String())
	assert.Equal(t, "helper", req.Get("messages.0.content").String())
	assert.Equal(t, "user", req.Get("messages.1.role").String())
	assert.Equal(t, "calculator", req.Get("tools.0.function.name").String())
	assert.Equal(t, "function", req.Get("tools.0.type").String())
	assert.Equal(t, `["a","b","operation"]`, req.Get("tools.0.function.parameters.required").Raw)

	require.NoError(t, rc.Append(chatmodel.Message{
		Role:       chatmodel.RoleTool,
		ToolName:   "calculator",
		Content:    "4",
		ToolCallID: "call_abc",
		Arguments:  resp.ToolCall.Arguments,
	}))

	resp, err = m.Generate(ctx, rc, list)
	require.NoError(t, err)
	assert.False(t, resp.IsToolCall())
	assert.Equal(t, "The answer is 4", resp.Content)

	req = gjson.Parse(bodies[1])
	msgs := req.Get("messages").Array()
	require.Len(t, msgs, 4)
	assert.Equal(t, "assistant", msgs[2].Get("role").String())
	assert.Equal(t, "call_abc", msgs[2].Get("tool_calls.0.id").String())
	assert.Equal(t, "calculator", msgs[2].Get("tool_calls.0.function.name").String())
	assert.Equal(t, "tool", msgs[3].Get("role").String())
	assert.Equal(t, "call_abc", msgs[3].Get("tool_call_id").String())
	assert.Equal(t, "4", msgs[3].Get("content").String())

	// server error
	_, err = m.Generate(ctx, rc, list)
	require.Error(t, err)
	assert.True(t, errors.Is(err, chatmodel.ErrModel))
}

func TestRequestWithoutTools(t *testing.T) {
	m, err := New(llms.WithAPIKey("k"), llms.WithModel("gpt-4o-mini"), llms.WithTemperature(0.1), llms.WithMaxTokens(0))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", m.GetName())

	params, err := m.request([]chatmodel.Message{{Role: chatmodel.RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, params.Tools)
	assert.False(t, params.ParallelToolCalls.Valid())
	assert.False(t, params.MaxCompletionTokens.Valid())
	assert.Equal(t, 0.1, params.Temperature.Value)
	assert.Len(t, params.Messages, 1)
}

func TestNoResponse(t *testing.T) {
	ctx := context.Background()

	_, err := toResponse(ctx, nil)
	assert.EqualError(t, err, "model error: no response")

	var bodies []string
	server := newServer(t, &bodies, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`)
	defer server.Close()

	m, err := New(llms.WithAPIKey("test-key"), llms.WithBaseURL(server.URL), llms.WithMaxRetries(0))
	require.NoError(t, err)

	rc := chatmodel.NewRunContext("", nil)
	_, err = m.Generate(ctx, rc, nil)
	assert.EqualError(t, err, "model error: no response")
}

func TestNew_NoKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	_, err := New()
	assert.EqualError(t, err, "configuration error: OPENAI_API_KEY is not set")
}
