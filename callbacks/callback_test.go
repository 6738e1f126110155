package callbacks_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/adk/agent"
	"github.com/effective-security/adk/callbacks"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/mocks/mockagent"
	"github.com/effective-security/adk/mocks/mockllms"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/adk/tools/calculator"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAgent(t *testing.T, cb agent.Callback, responses ...*llms.Response) *agent.Agent {
	ctrl := gomock.NewController(t)
	model := mockllms.NewMockModel(ctrl)
	model.EXPECT().GetName().Return("mock-model").AnyTimes()
	model.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()

	calls := make([]any, 0, len(responses))
	for _, resp := range responses {
		calls = append(calls, model.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(resp, nil))
	}
	gomock.InOrder(calls...)

	a, err := agent.New("math", model,
		agent.WithInstructions("helper"),
		agent.WithTools(calculator.New()),
		agent.WithCallback(cb),
	)
	require.NoError(t, err)
	return a
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeVerbose)

	a := newAgent(t, cb,
		llms.Call("c1", "calculator", `{"a":2,"b":2,"operation":"add"}`),
		llms.Answer("The answer is 4"),
	)
	res, err := a.Run(context.Background(), "2+2?", nil)
	require.NoError(t, err)
	assert.Equal(t, "The answer is 4", res)

	out := buf.String()
	assert.Contains(t, out, "Agent Start: math\nInput: 2+2?\n")
	assert.Contains(t, out, "Model Call: math: mock-model model, 2 messages\n")
	assert.Contains(t, out, "Model Call End: math: mock-model model, tool call calculator\n")
	assert.Contains(t, out, "Tool Start: calculator\n")
	assert.Contains(t, out, "Tool End: calculator\nOutput: 4\n")
	assert.Contains(t, out, "Model Call End: math: mock-model model, answer\n")
	assert.Contains(t, out, "Agent End: math, 3 messages\nThe answer is 4\n"+
		"SYSTEM: helper\nUSER: 2+2?\nTOOL[calculator]: 4\n")
}

func TestPrinter_Errors(t *testing.T) {
	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeDefault)

	a := newAgent(t, cb, llms.Call("c1", "weather", `{}`))
	_, err := a.Run(context.Background(), "weather?", nil)
	require.Error(t, err)

	out := buf.String()
	assert.NotContains(t, out, "SYSTEM: helper")
	assert.Contains(t, out, "Tool Not Found: weather\n")
	assert.Contains(t, out, "Agent Error: math: tool execution error: Tool not found: weather\n")

	buf.Reset()
	tool := calculator.New()
	cb.OnToolError(context.Background(), tool, "{}", errors.New("boom"))
	assert.Equal(t, "Tool Error: calculator: boom\n", buf.String())
}

func TestFanout(t *testing.T) {
	ctrl := gomock.NewController(t)
	m1 := mockagent.NewMockCallback(ctrl)
	m2 := mockagent.NewMockCallback(ctrl)

	for _, m := range []*mockagent.MockCallback{m1, m2} {
		m.EXPECT().OnAgentStart(gomock.Any(), gomock.Any(), "2+2?").Times(1)
		m.EXPECT().OnModelCallStart(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.EXPECT().OnModelCallEnd(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(2)
		m.EXPECT().OnToolStart(gomock.Any(), gomock.Any(), gomock.Any()).Times(1)
		m.EXPECT().OnToolEnd(gomock.Any(), gomock.Any(), gomock.Any(), tools.ToolResult{ToolName: "calculator", Output: "4"}).Times(1)
		m.EXPECT().OnAgentEnd(gomock.Any(), gomock.Any(), "2+2?", "4", gomock.Any()).Times(1)
	}

	fanout := callbacks.NewFanout(m1)
	fanout.Add(m2)

	a := newAgent(t, fanout,
		llms.Call("c1", "calculator", `{"a":2,"b":2,"operation":"add"}`),
		llms.Answer("4"),
	)
	_, err := a.Run(context.Background(), "2+2?", nil)
	require.NoError(t, err)

	m1.EXPECT().OnToolError(gomock.Any(), gomock.Any(), "{}", gomock.Any())
	m2.EXPECT().OnToolError(gomock.Any(), gomock.Any(), "{}", gomock.Any())
	fanout.OnToolError(context.Background(), calculator.New(), "{}", errors.New("boom"))

	m1.EXPECT().OnToolNotFound(gomock.Any(), a, "x")
	m2.EXPECT().OnToolNotFound(gomock.Any(), a, "x")
	fanout.OnToolNotFound(context.Background(), a, "x")

	m1.EXPECT().OnAgentError(gomock.Any(), a, "in", gomock.Any(), gomock.Any())
	m2.EXPECT().OnAgentError(gomock.Any(), a, "in", gomock.Any(), gomock.Any())
	fanout.OnAgentError(context.Background(), a, "in", errors.New("boom"), chatmodel.NewRunContext("", nil))
}

func TestNoopAndLogger(t *testing.T) {
	logger := xlog.NewPackageLogger("github.com/effective-security/adk", "callbacks_test")
	cb := callbacks.NewFanout(callbacks.NewNoop(), callbacks.NewPackageLogger(logger))

	a := newAgent(t, cb,
		llms.Call("c1", "calculator", `{"a":2,"b":0,"operation":"divide"}`),
		llms.Call("c2", "unknown", `{}`),
	)
	_, err := a.Run(context.Background(), "2/0?", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, chatmodel.ErrTool))

	cb.OnToolError(context.Background(), calculator.New(), "{}", errors.New("boom"))
}
