package agent

import (
	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/tools"
)

// DefaultMaxToolCalls is the default limit of tool calls in one run
const DefaultMaxToolCalls = 10

// Option is a function that can be used to modify the behavior of the Agent Config.
type Option func(*Config)

// Config of the Agent
type Config struct {
	// Instructions is the system prompt, it may be a Go template
	// rendered against the run Context.
	Instructions string
	// Tools registered with the Agent, in the order of registration.
	Tools []tools.Tool
	// MaxToolCalls is the maximum number of tool calls in one run.
	MaxToolCalls int
	// Context is merged under the caller's Context on each run.
	Context chatmodel.Context
	// Callback receives the run events.
	Callback Callback
}

// NewConfig returns the config with the options applied
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		MaxToolCalls: DefaultMaxToolCalls,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithInstructions sets the system prompt.
func WithInstructions(instructions string) Option {
	return func(o *Config) {
		o.Instructions = instructions
	}
}

// WithTools appends the tools.
func WithTools(list ...tools.Tool) Option {
	return func(o *Config) {
		o.Tools = append(o.Tools, list...)
	}
}

// WithMaxToolCalls sets the maximum number of tool calls in one run.
// Values below 1 keep the default.
func WithMaxToolCalls(n int) Option {
	return func(o *Config) {
		if n > 0 {
			o.MaxToolCalls = n
		}
	}
}

// WithContext sets the base Context of every run.
func WithContext(c chatmodel.Context) Option {
	return func(o *Config) {
		o.Context = c.Clone()
	}
}

// WithCallback sets the callback.
func WithCallback(callback Callback) Option {
	return func(o *Config) {
		o.Callback = callback
	}
}
