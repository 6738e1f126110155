package callbacks_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/effective-security/adk/callbacks"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func fixedTime(t *testing.T) {
	callbacks.TimeNowFn = func() time.Time {
		return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	}
	t.Cleanup(func() {
		callbacks.TimeNowFn = time.Now
	})
}

func TestScratchpad(t *testing.T) {
	fixedTime(t)

	sp := callbacks.NewScratchpad(callbacks.ModeVerbose)
	call := llms.Call("c1", "calculator", `{"a":2,"b":2,"operation":"add"}`)
	call.Usage = llms.Usage{InputTokens: 100, OutputTokens: 10}
	answer := llms.Answer("The answer is 4")
	answer.Usage = llms.Usage{InputTokens: 120, OutputTokens: 5}

	a := newAgent(t, sp, call, answer)

	rc := chatmodel.NewRunContext("run1", nil)
	sp.StartRun(rc.ID())

	res, err := a.Execute(context.Background(), rc, "2+2?")
	require.NoError(t, err)
	assert.Equal(t, "The answer is 4", res)

	stats, log := sp.EndRun(rc.ID())
	require.NotNil(t, stats)
	assert.Equal(t, "run1", stats.RunID)
	assert.Equal(t, uint32(1), stats.AgentCalls)
	assert.Equal(t, uint32(1), stats.AgentCallsSucceeded)
	assert.Equal(t, uint32(0), stats.AgentCallsFailed)
	assert.Equal(t, uint32(2), stats.ModelCalls)
	// 2 messages on the first call, 3 on the second
	assert.Equal(t, uint32(5), stats.TotalMessages)
	assert.Equal(t, uint32(1), stats.ToolsCalls)
	assert.Equal(t, uint32(1), stats.ToolsCallsSucceeded)
	assert.Equal(t, uint64(220), stats.LLMInputTokens)
	assert.Equal(t, uint64(15), stats.LLMOutputTokens)
	assert.Equal(t, uint64(len(call.ToolCall.Arguments)+len("The answer is 4")), stats.LLMBytesIn)
	assert.NotZero(t, stats.LLMBytesOut)

	text := string(log)
	assert.True(t, strings.HasPrefix(text, "2025-01-02 03:04:05 run1 *** Run Started ***\n"))
	assert.Contains(t, text, "run1 math *** Agent Start ***\n")
	assert.Contains(t, text, "run1 math Input: 2+2?\n")
	assert.Contains(t, text, "run1 calculator *** Tool Start ***\n")
	assert.Contains(t, text, "run1 calculator Output: 4\n")
	assert.Contains(t, text, "[2] tool: calculator({\"a\":2,\"b\":2,\"operation\":\"add\"}) 1 bytes\n")
	assert.Contains(t, text, "Tool calls: 1, Failed: 0, Not Found: 0\n")
	assert.Contains(t, text, "*** Run Ended. Duration: ")

	// run is removed
	stats, log = sp.EndRun(rc.ID())
	assert.Nil(t, stats)
	assert.Nil(t, log)
}

func TestScratchpad_Failure(t *testing.T) {
	fixedTime(t)

	sp := callbacks.NewScratchpad(callbacks.ModeDefault)
	a := newAgent(t, sp, llms.Call("c1", "weather", `{}`))

	rc := chatmodel.NewRunContext("run2", nil)
	sp.StartRun(rc.ID())
	_, err := a.Execute(context.Background(), rc, "weather?")
	require.Error(t, err)

	stats, log := sp.EndRun(rc.ID())
	require.NotNil(t, stats)
	assert.Equal(t, uint32(1), stats.AgentCallsFailed)
	assert.Equal(t, uint32(1), stats.ToolNotFound)
	assert.Equal(t, uint32(0), stats.ToolsCalls)
	assert.Contains(t, string(log), "run2 math *** Tool Not Found *** weather\n")
	assert.Contains(t, string(log), "run2 math *** Error *** tool execution error: Tool not found: weather\n")
}

func TestScratchpad_NotStarted(t *testing.T) {
	sp := callbacks.NewScratchpad(callbacks.ModeVerbose)
	a := newAgent(t, sp, llms.Answer("hello"))

	// events of the runs that were not started are ignored
	res, err := a.Run(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", res)

	stats, log := sp.EndRun("unknown")
	assert.Nil(t, stats)
	assert.Nil(t, log)
}

func TestRunStats_JSON(t *testing.T) {
	stats := &callbacks.RunStats{
		RunID:           "run1",
		Duration:        2 * time.Second,
		TotalMessages:   5,
		LLMInputTokens:  220,
		LLMOutputTokens: 15,
		ModelCalls:      2,
		ToolsCalls:      1,
		ToolNotFound:    1,
	}
	js := stats.JSON()
	assert.True(t, gjson.Valid(js))
	assert.Equal(t, "run1", gjson.Get(js, "run_id").String())
	assert.Equal(t, "2s", gjson.Get(js, "duration").String())
	assert.Equal(t, int64(5), gjson.Get(js, "messages").Int())
	assert.Equal(t, int64(220), gjson.Get(js, "llm.input_tokens").Int())
	assert.Equal(t, int64(2), gjson.Get(js, "llm.calls").Int())
	assert.Equal(t, int64(1), gjson.Get(js, "tools.calls").Int())
	assert.Equal(t, int64(1), gjson.Get(js, "tools.not_found").Int())
	assert.Equal(t, int64(0), gjson.Get(js, "agent.failed").Int())
}
