// Package callbacks provides agent.Callback implementations
// for printing, logging and collecting run statistics.
package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/adk/agent"
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/pkg/llmutils"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/xlog"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ agent.Callback = (*Noop)(nil)
	_ agent.Callback = (*Printer)(nil)
	_ agent.Callback = (*PackageLogger)(nil)
	_ agent.Callback = (*Fanout)(nil)
	_ agent.Callback = (*Scratchpad)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []agent.Callback
}

func NewFanout(callbacks ...agent.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback agent.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnAgentStart(ctx context.Context, a *agent.Agent, input string) {
	for _, callback := range l.callbacks {
		callback.OnAgentStart(ctx, a, input)
	}
}

func (l *Fanout) OnAgentEnd(ctx context.Context, a *agent.Agent, input, output string, rc *chatmodel.RunContext) {
	for _, callback := range l.callbacks {
		callback.OnAgentEnd(ctx, a, input, output, rc)
	}
}

func (l *Fanout) OnAgentError(ctx context.Context, a *agent.Agent, input string, err error, rc *chatmodel.RunContext) {
	for _, callback := range l.callbacks {
		callback.OnAgentError(ctx, a, input, err, rc)
	}
}

func (l *Fanout) OnModelCallStart(ctx context.Context, a *agent.Agent, model llms.Model, rc *chatmodel.RunContext) {
	for _, callback := range l.callbacks {
		callback.OnModelCallStart(ctx, a, model, rc)
	}
}

func (l *Fanout) OnModelCallEnd(ctx context.Context, a *agent.Agent, model llms.Model, resp *llms.Response) {
	for _, callback := range l.callbacks {
		callback.OnModelCallEnd(ctx, a, model, resp)
	}
}

func (l *Fanout) OnToolNotFound(ctx context.Context, a *agent.Agent, toolName string) {
	for _, callback := range l.callbacks {
		callback.OnToolNotFound(ctx, a, toolName)
	}
}

func (l *Fanout) OnToolStart(ctx context.Context, tool tools.Tool, args string) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, tool, args)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, tool tools.Tool, args string, result tools.ToolResult) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, tool, args, result)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, tool tools.Tool, args string, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, tool, args, err)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnAgentStart(context.Context, *agent.Agent, string) {}
func (l *Noop) OnAgentEnd(context.Context, *agent.Agent, string, string, *chatmodel.RunContext) {
}
func (l *Noop) OnAgentError(context.Context, *agent.Agent, string, error, *chatmodel.RunContext) {
}
func (l *Noop) OnModelCallStart(context.Context, *agent.Agent, llms.Model, *chatmodel.RunContext) {
}
func (l *Noop) OnModelCallEnd(context.Context, *agent.Agent, llms.Model, *llms.Response) {}
func (l *Noop) OnToolNotFound(context.Context, *agent.Agent, string)                    {}
func (l *Noop) OnToolStart(context.Context, tools.Tool, string)                         {}
func (l *Noop) OnToolEnd(context.Context, tools.Tool, string, tools.ToolResult)         {}
func (l *Noop) OnToolError(context.Context, tools.Tool, string, error)                  {}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnAgentStart(_ context.Context, a *agent.Agent, input string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Agent Start: %s\n", a.Name())
	fmt.Fprintf(l.Out, "Input: %s\n", input)
}

func (l *Printer) OnAgentEnd(_ context.Context, a *agent.Agent, _, output string, rc *chatmodel.RunContext) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Agent End: %s, %d messages\n", a.Name(), rc.Len())
	if l.Mode == ModeVerbose {
		fmt.Fprintln(l.Out, output)
		llmutils.PrintMessages(l.Out, rc.Messages())
	}
}

func (l *Printer) OnAgentError(_ context.Context, a *agent.Agent, _ string, err error, _ *chatmodel.RunContext) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Agent Error: %s: %s\n", a.Name(), err.Error())
}

func (l *Printer) OnModelCallStart(_ context.Context, a *agent.Agent, model llms.Model, rc *chatmodel.RunContext) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Model Call: %s: %s model, %d messages\n", a.Name(), model.GetName(), rc.Len())
}

func (l *Printer) OnModelCallEnd(_ context.Context, a *agent.Agent, model llms.Model, resp *llms.Response) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if resp.IsToolCall() {
		fmt.Fprintf(l.Out, "Model Call End: %s: %s model, tool call %s\n", a.Name(), model.GetName(), resp.ToolCall.Name)
		return
	}
	fmt.Fprintf(l.Out, "Model Call End: %s: %s model, answer\n", a.Name(), model.GetName())
}

func (l *Printer) OnToolNotFound(_ context.Context, _ *agent.Agent, toolName string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Not Found: %s\n", toolName)
}

func (l *Printer) OnToolStart(_ context.Context, tool tools.Tool, args string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s\n", tool.Name())
	fmt.Fprintf(l.Out, "Input: %s\n", args)
}

func (l *Printer) OnToolEnd(_ context.Context, tool tools.Tool, _ string, result tools.ToolResult) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s\n", tool.Name())
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", result.Output)
	}
}

func (l *Printer) OnToolError(_ context.Context, tool tools.Tool, _ string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s: %s\n", tool.Name(), err.Error())
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnAgentStart(ctx context.Context, a *agent.Agent, input string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "agent_start",
		"agent", a.Name(),
		"input", input,
	)
}

func (l *PackageLogger) OnAgentEnd(ctx context.Context, a *agent.Agent, _, output string, rc *chatmodel.RunContext) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "agent_end",
		"agent", a.Name(),
		"messages", rc.Len(),
		"result", output,
	)
}

func (l *PackageLogger) OnAgentError(ctx context.Context, a *agent.Agent, _ string, err error, rc *chatmodel.RunContext) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "agent_error",
		"agent", a.Name(),
		"messages", rc.Len(),
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnModelCallStart(ctx context.Context, a *agent.Agent, model llms.Model, rc *chatmodel.RunContext) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "model_call_start",
		"agent", a.Name(),
		"model", model.GetName(),
		"messages", rc.Len(),
	)
}

func (l *PackageLogger) OnModelCallEnd(ctx context.Context, a *agent.Agent, model llms.Model, resp *llms.Response) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "model_call_end",
		"agent", a.Name(),
		"model", model.GetName(),
		"tool_call", resp.IsToolCall(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
}

func (l *PackageLogger) OnToolNotFound(ctx context.Context, a *agent.Agent, toolName string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_not_found",
		"agent", a.Name(),
		"tool", toolName,
	)
}

func (l *PackageLogger) OnToolStart(ctx context.Context, tool tools.Tool, args string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"tool", tool.Name(),
		"input", args,
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, tool tools.Tool, _ string, result tools.ToolResult) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"tool", tool.Name(),
		"output", result.Output,
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, tool tools.Tool, _ string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"tool", tool.Name(),
		"err", err.Error(),
	)
}
