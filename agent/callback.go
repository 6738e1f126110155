package agent

import (
	"context"

	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/tools"
)

//go:generate mockgen -source=callback.go -destination=../mocks/mockagent/callback_mock.gen.go -package mockagent

// Callback receives the agent run events.
// The callbacks are called synchronously on the run goroutine.
type Callback interface {
	tools.Callback
	OnAgentStart(ctx context.Context, agent *Agent, input string)
	OnAgentEnd(ctx context.Context, agent *Agent, input string, output string, rc *chatmodel.RunContext)
	OnAgentError(ctx context.Context, agent *Agent, input string, err error, rc *chatmodel.RunContext)
	OnModelCallStart(ctx context.Context, agent *Agent, model llms.Model, rc *chatmodel.RunContext)
	OnModelCallEnd(ctx context.Context, agent *Agent, model llms.Model, resp *llms.Response)
	OnToolNotFound(ctx context.Context, agent *Agent, toolName string)
}
