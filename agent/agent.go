// Package agent implements the tool-using conversational agent:
// the run seeds the conversation with the instructions and the user input,
// then calls the model and dispatches the requested tools
// until the model returns the final answer.
package agent

import (
	"context"
	"strings"
	"time"

	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/pkg/llmutils"
	"github.com/effective-security/adk/pkg/metricskey"
	"github.com/effective-security/adk/pkg/prompts"
	"github.com/effective-security/adk/pkg/schema"
	"github.com/effective-security/adk/tools"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/adk", "agent")

// Agent is immutable after construction and may be shared by concurrent runs.
type Agent struct {
	name         string
	instructions *prompts.Template
	model        llms.Model
	tools        []tools.Tool
	toolsByName  map[string]tools.Tool
	toolsByLower map[string]tools.Tool
	toolsNames   []string
	cfg          *Config
}

// New returns the Agent, or ConfigurationError if the model is not set,
// a tool is invalid, or tool names collide.
func New(name string, model llms.Model, opts ...Option) (*Agent, error) {
	if model == nil {
		return nil, chatmodel.NewConfigurationError("Model not set")
	}

	cfg := NewConfig(opts...)
	instructions, err := prompts.NewTemplate(name, cfg.Instructions)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		name:         name,
		instructions: instructions,
		model:        model,
		tools:        []tools.Tool{},
		toolsByName:  make(map[string]tools.Tool),
		toolsByLower: make(map[string]tools.Tool),
		cfg:          cfg,
	}

	for _, tool := range cfg.Tools {
		if err := a.register(tool); err != nil {
			return nil, err
		}
	}

	if len(a.tools) > 0 {
		pt := model.GetProviderType()
		if llms.ProviderCapabilities(pt) != 0 && !pt.Supports(llms.CapabilityFunctionCalling) {
			return nil, chatmodel.NewConfigurationError("provider %s does not support tools", pt)
		}
	}
	return a, nil
}

func (a *Agent) register(tool tools.Tool) error {
	if tool == nil {
		return chatmodel.NewConfigurationError("agent %s: tool is nil", a.name)
	}
	name := tool.Name()
	if err := tools.ValidateName(name); err != nil {
		return err
	}
	// use lowercase for the key
	lower := strings.ToLower(name)
	if a.toolsByLower[lower] != nil {
		return chatmodel.NewConfigurationError("agent %s: duplicate tool name: %s", a.name, name)
	}
	if err := schema.Validate(tool.Parameters()); err != nil {
		return chatmodel.WrapConfigurationError(err, "tool %s: invalid parameters", name)
	}

	a.toolsByName[name] = tool
	a.toolsByLower[lower] = tool
	a.toolsNames = append(a.toolsNames, name)
	a.tools = append(a.tools, tool)
	return nil
}

// Name returns the name of the Agent.
func (a *Agent) Name() string {
	return a.name
}

// Instructions returns the instructions template source.
func (a *Agent) Instructions() string {
	return a.instructions.Text()
}

// Tools returns the registered tools, in the order of registration.
func (a *Agent) Tools() []tools.Tool {
	return append([]tools.Tool(nil), a.tools...)
}

// Model returns the model.
func (a *Agent) Model() llms.Model {
	return a.model
}

// Config returns the config.
func (a *Agent) Config() Config {
	return *a.cfg
}

// FindTool returns the tool by exact name,
// or by case insensitive name if not found.
func (a *Agent) FindTool(name string) tools.Tool {
	if tool := a.toolsByName[name]; tool != nil {
		return tool
	}
	return a.toolsByLower[strings.ToLower(name)]
}

// Run executes the agent on a new RunContext created from data,
// and returns the final answer of the model.
func (a *Agent) Run(ctx context.Context, input string, data chatmodel.Context) (string, error) {
	base := a.cfg.Context.Clone().Merge(data)
	rc := chatmodel.NewRunContext(chatmodel.GetRunID(ctx), base)
	return a.Execute(ctx, rc, input)
}

// Execute runs the agent on the provided RunContext,
// the conversation is appended to rc and is available after the run.
func (a *Agent) Execute(ctx context.Context, rc *chatmodel.RunContext, input string) (string, error) {
	if rc == nil {
		return "", chatmodel.NewContextError("run context is nil")
	}
	started := time.Now()
	defer metricskey.PerfAgentRun.MeasureSince(started, a.name)

	ctx = chatmodel.WithRunContext(ctx, rc)

	callback := a.cfg.Callback
	if callback != nil {
		callback.OnAgentStart(ctx, a, input)
	}

	output, err := a.run(ctx, rc, input)
	if err != nil {
		metricskey.StatsAgentRunsFailed.IncrCounter(1, a.name, kindName(err))
		logger.ContextKV(ctx, xlog.ERROR,
			"agent", a.name,
			"run_id", rc.ID(),
			"messages", rc.Len(),
			"err", err.Error(),
		)
		if callback != nil {
			callback.OnAgentError(ctx, a, input, err, rc)
		}
		return "", err
	}

	metricskey.StatsAgentRunsSucceeded.IncrCounter(1, a.name)
	if callback != nil {
		callback.OnAgentEnd(ctx, a, input, output, rc)
	}
	return output, nil
}

func (a *Agent) run(ctx context.Context, rc *chatmodel.RunContext, input string) (string, error) {
	system, err := a.instructions.Render(a.promptData(rc))
	if err != nil {
		return "", err
	}
	if system != "" {
		if err = rc.AddMessage(chatmodel.RoleSystem, system); err != nil {
			return "", err
		}
	}
	if err = rc.AddMessage(chatmodel.RoleUser, input); err != nil {
		return "", err
	}

	toolCalls := 0
	for {
		if err = ctx.Err(); err != nil {
			return "", chatmodel.WrapInternalError(err, "agent %s: run cancelled", a.name)
		}

		resp, err := a.generate(ctx, rc)
		if err != nil {
			return "", err
		}

		if !resp.IsToolCall() {
			logger.ContextKV(ctx, xlog.DEBUG,
				"agent", a.name,
				"run_id", rc.ID(),
				"status", "answer",
				"tool_calls", toolCalls,
				"answer", slices.StringUpto(resp.Content, 64),
			)
			return resp.Content, nil
		}

		if toolCalls >= a.cfg.MaxToolCalls {
			return "", chatmodel.NewInternalError("tool call limit exceeded")
		}
		toolCalls++

		call := resp.ToolCall
		tool := a.FindTool(call.Name)
		if tool == nil {
			metricskey.StatsToolCallsNotFound.IncrCounter(1, call.Name)
			logger.ContextKV(ctx, xlog.WARNING,
				"agent", a.name,
				"run_id", rc.ID(),
				"status", "tool_not_found",
				"tool_name", call.Name,
				"available_tools", strings.Join(a.toolsNames, ", "),
			)
			if a.cfg.Callback != nil {
				a.cfg.Callback.OnToolNotFound(ctx, a, call.Name)
			}
			return "", chatmodel.NewToolError("Tool not found: %s", call.Name)
		}

		result, err := a.executeTool(ctx, rc, tool, call.Arguments)
		if err != nil {
			return "", err
		}

		err = rc.Append(chatmodel.Message{
			Role:       chatmodel.RoleTool,
			Content:    result.Output,
			ToolName:   result.ToolName,
			ToolCallID: call.ID,
			Arguments:  call.Arguments,
		})
		if err != nil {
			return "", err
		}
	}
}

func (a *Agent) generate(ctx context.Context, rc *chatmodel.RunContext) (*llms.Response, error) {
	modelName := a.model.GetName()
	callback := a.cfg.Callback
	if callback != nil {
		callback.OnModelCallStart(ctx, a, a.model, rc)
	}

	bytesSent := llmutils.CountMessagesContentSize(rc.Messages())
	metricskey.StatsLLMMessagesSent.IncrCounter(float64(rc.Len()), a.name, modelName)
	metricskey.StatsLLMBytesSent.IncrCounter(float64(bytesSent), a.name, modelName)

	started := time.Now()
	resp, err := a.model.Generate(ctx, rc, a.tools)
	metricskey.PerfModelCall.MeasureSince(started, a.name, modelName)
	if err != nil {
		metricskey.StatsLLMCallsFailed.IncrCounter(1, a.name, modelName)
		if chatmodel.KindOf(err) == nil {
			err = chatmodel.WrapModelError(err, "model %s failed", modelName)
		}
		return nil, err
	}
	if resp == nil {
		metricskey.StatsLLMCallsFailed.IncrCounter(1, a.name, modelName)
		return nil, llms.ErrNoResponse()
	}

	received := len(resp.Content)
	if resp.ToolCall != nil {
		received += len(resp.ToolCall.Name) + len(resp.ToolCall.Arguments)
	}
	metricskey.StatsLLMBytesReceived.IncrCounter(float64(received), a.name, modelName)
	metricskey.StatsLLMInputTokens.IncrCounter(float64(resp.Usage.InputTokens), a.name, modelName)
	metricskey.StatsLLMOutputTokens.IncrCounter(float64(resp.Usage.OutputTokens), a.name, modelName)

	if callback != nil {
		callback.OnModelCallEnd(ctx, a, a.model, resp)
	}
	return resp, nil
}

func (a *Agent) executeTool(ctx context.Context, rc *chatmodel.RunContext, tool tools.Tool, args string) (tools.ToolResult, error) {
	name := tool.Name()
	callback := a.cfg.Callback
	if callback != nil {
		callback.OnToolStart(ctx, tool, args)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"agent", a.name,
		"run_id", rc.ID(),
		"status", "tool_call",
		"tool_name", name,
		"args", slices.StringUpto(args, 256),
	)

	started := time.Now()
	result, err := tool.Execute(ctx, rc, args)
	metricskey.PerfToolCall.MeasureSince(started, name)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		err = tools.WrapError(name, err)
		logger.ContextKV(ctx, xlog.WARNING,
			"agent", a.name,
			"run_id", rc.ID(),
			"status", "tool_failed",
			"tool_name", name,
			"err", err.Error(),
		)
		if callback != nil {
			callback.OnToolError(ctx, tool, args, err)
		}
		return result, err
	}

	if result.ToolName == "" {
		result.ToolName = name
	}
	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
	if callback != nil {
		callback.OnToolEnd(ctx, tool, args, result)
	}
	return result, nil
}

// promptData returns the data for the instructions template:
// the run Context, with AgentName and Tools added when not set.
func (a *Agent) promptData(rc *chatmodel.RunContext) map[string]any {
	if a.instructions.IsStatic() {
		return nil
	}
	data := rc.Context().Clone()
	if _, ok := data["AgentName"]; !ok {
		data["AgentName"] = a.name
	}
	if _, ok := data["Tools"]; !ok {
		data["Tools"] = tools.GetDescriptions(a.tools...)
	}
	return data
}

func kindName(err error) string {
	switch chatmodel.KindOf(err) {
	case chatmodel.ErrModel:
		return "model"
	case chatmodel.ErrTool:
		return "tool"
	case chatmodel.ErrInvalidInput:
		return "invalid_input"
	case chatmodel.ErrContext:
		return "context"
	case chatmodel.ErrConfiguration:
		return "configuration"
	case chatmodel.ErrInternal:
		return "internal"
	case chatmodel.ErrSerialization:
		return "serialization"
	}
	return "unknown"
}
