package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/effective-security/adk/agent"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/pkg/llmutils"
	"github.com/effective-security/adk/tools"
	"github.com/tidwall/sjson"
)

var TimeNowFn = time.Now

// RunStats are the counters of one run
type RunStats struct {
	RunID string

	Duration            time.Duration
	TotalMessages       uint32
	LLMBytesOut         uint64
	LLMBytesIn          uint64
	LLMInputTokens      uint64
	LLMOutputTokens     uint64
	AgentCalls          uint32
	AgentCallsSucceeded uint32
	AgentCallsFailed    uint32
	ModelCalls          uint32
	ToolsCalls          uint32
	ToolsCallsSucceeded uint32
	ToolsCallsFailed    uint32
	ToolNotFound        uint32
}

// JSON returns the stats as a JSON object with snake_case keys
func (s *RunStats) JSON() string {
	js := "{}"
	for _, kv := range []struct {
		key string
		val any
	}{
		{"run_id", s.RunID},
		{"duration", s.Duration.String()},
		{"messages", s.TotalMessages},
		{"llm.bytes_out", s.LLMBytesOut},
		{"llm.bytes_in", s.LLMBytesIn},
		{"llm.input_tokens", s.LLMInputTokens},
		{"llm.output_tokens", s.LLMOutputTokens},
		{"llm.calls", s.ModelCalls},
		{"agent.calls", s.AgentCalls},
		{"agent.succeeded", s.AgentCallsSucceeded},
		{"agent.failed", s.AgentCallsFailed},
		{"tools.calls", s.ToolsCalls},
		{"tools.succeeded", s.ToolsCallsSucceeded},
		{"tools.failed", s.ToolsCallsFailed},
		{"tools.not_found", s.ToolNotFound},
	} {
		// keys are static, the error is not expected
		js, _ = sjson.Set(js, kv.key, kv.val)
	}
	return js
}

// Scratchpad collects the per-run log and statistics,
// the runs are identified by the RunContext ID carried by the context.
type Scratchpad struct {
	runs map[string]*run
	mode Mode
	lock sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		runs: make(map[string]*run),
		mode: mode,
	}
}

// StartRun starts collecting the events of the run
func (l *Scratchpad) StartRun(runID string) {
	r := &run{
		stats: RunStats{
			RunID: runID,
		},
		started: time.Now(),
	}

	l.lock.Lock()
	l.runs[runID] = r
	l.lock.Unlock()

	r.print("*** Run Started ***")
}

// EndRun returns the stats and the log of the run,
// or nil if the run was not started.
func (l *Scratchpad) EndRun(runID string) (*RunStats, []byte) {
	l.lock.Lock()
	run := l.runs[runID]
	delete(l.runs, runID)
	l.lock.Unlock()

	if run == nil {
		return nil, nil
	}

	stats := run.stats
	stats.Duration = time.Since(run.started)

	run.print(fmt.Sprintf("Agent calls: %d, Failed: %d",
		stats.AgentCalls,
		stats.AgentCallsFailed,
	))
	run.print(fmt.Sprintf("Tool calls: %d, Failed: %d, Not Found: %d",
		stats.ToolsCalls,
		stats.ToolsCallsFailed,
		stats.ToolNotFound,
	))
	run.print(fmt.Sprintf("LLM calls: %d, Messages: %d, Bytes Out: %d, Bytes In: %d, Input Tokens: %d, Output Tokens: %d",
		stats.ModelCalls,
		stats.TotalMessages,
		stats.LLMBytesOut,
		stats.LLMBytesIn,
		stats.LLMInputTokens,
		stats.LLMOutputTokens,
	))
	run.print(fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	return &stats, run.w.Bytes()
}

func (l *Scratchpad) getRun(ctx context.Context) *run {
	runID := chatmodel.GetRunID(ctx)
	if runID == "" {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	return l.runs[runID]
}

func (l *Scratchpad) OnAgentStart(ctx context.Context, a *agent.Agent, input string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.AgentCalls, 1)
	run.print(a.Name(), "*** Agent Start ***")
	run.print(a.Name(), "Input:", input)
}

func (l *Scratchpad) OnAgentEnd(ctx context.Context, a *agent.Agent, _, output string, rc *chatmodel.RunContext) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.AgentCallsSucceeded, 1)

	if l.mode == ModeVerbose {
		run.print(a.Name(), "Output:", output)
		run.print(a.Name(), printMessages(rc.Messages()))
	}
	run.print(a.Name(), "*** Agent End ***")
}

func (l *Scratchpad) OnAgentError(ctx context.Context, a *agent.Agent, _ string, err error, rc *chatmodel.RunContext) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.AgentCallsFailed, 1)
	run.print(a.Name(), "*** Error ***", err.Error())
	run.print(a.Name(), printMessages(rc.Messages()))
}

func printMessages(messages []chatmodel.Message) string {
	var buf strings.Builder
	buf.WriteString("Messages:\n")
	for idx, msg := range messages {
		fmt.Fprintf(&buf, "[%d] %s:", idx, msg.Role)
		if msg.IsTool() {
			fmt.Fprintf(&buf, " %s(%s)", msg.ToolName, msg.Arguments)
		}
		fmt.Fprintf(&buf, " %d bytes\n", len(msg.Content))
	}
	return buf.String()
}

func (l *Scratchpad) OnModelCallStart(ctx context.Context, a *agent.Agent, model llms.Model, rc *chatmodel.RunContext) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}

	msgs := rc.Messages()
	atomic.AddUint64(&run.stats.LLMBytesOut, llmutils.CountMessagesContentSize(msgs))
	atomic.AddUint32(&run.stats.ModelCalls, 1)
	count := uint32(len(msgs))
	atomic.AddUint32(&run.stats.TotalMessages, count)

	run.print(a.Name(), "*** LLM Call ***", fmt.Sprintf("%s model, %d messages", model.GetName(), count))
	if l.mode == ModeVerbose {
		run.print(a.Name(), printMessages(msgs))
	}
}

func (l *Scratchpad) OnModelCallEnd(ctx context.Context, a *agent.Agent, model llms.Model, resp *llms.Response) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}

	received := len(resp.Content)
	if resp.ToolCall != nil {
		received += len(resp.ToolCall.Arguments)
	}
	atomic.AddUint64(&run.stats.LLMBytesIn, uint64(received))
	atomic.AddUint64(&run.stats.LLMInputTokens, uint64(resp.Usage.InputTokens))
	atomic.AddUint64(&run.stats.LLMOutputTokens, uint64(resp.Usage.OutputTokens))

	run.print(a.Name(), "*** LLM Call End ***", fmt.Sprintf("%s model, %d input tokens, %d output tokens",
		model.GetName(), resp.Usage.InputTokens, resp.Usage.OutputTokens))
}

func (l *Scratchpad) OnToolStart(ctx context.Context, tool tools.Tool, args string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCalls, 1)
	run.print(tool.Name(), "*** Tool Start ***")
	run.print(tool.Name(), "Input:", args)
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, tool tools.Tool, _ string, result tools.ToolResult) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsSucceeded, 1)
	if l.mode == ModeVerbose {
		run.print(tool.Name(), "Output:", result.Output)
	}
	run.print(tool.Name(), "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, tool tools.Tool, _ string, err error) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolsCallsFailed, 1)
	run.print(tool.Name(), "*** Tool Error ***", err.Error())
}

func (l *Scratchpad) OnToolNotFound(ctx context.Context, a *agent.Agent, toolName string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolNotFound, 1)
	run.print(a.Name(), "*** Tool Not Found ***", toolName)
}

type run struct {
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

// print writes the entries to the run's output in the format:
// [timestamp runID] entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	ts := TimeNowFn().Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.stats.RunID)
	_, _ = r.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = r.w.WriteString(" ")
		}
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}
