package agent

import (
	"github.com/effective-security/adk/pkg/llms"
	"github.com/effective-security/adk/tools"
)

// Builder collects the Agent parts, Build fails if the model is not set.
type Builder struct {
	name  string
	model llms.Model
	opts  []Option
}

// NewBuilder returns a builder of the named Agent
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Instructions sets the system prompt.
func (b *Builder) Instructions(instructions string) *Builder {
	b.opts = append(b.opts, WithInstructions(instructions))
	return b
}

// Model sets the model.
func (b *Builder) Model(model llms.Model) *Builder {
	b.model = model
	return b
}

// AddTool appends the tool.
func (b *Builder) AddTool(tool tools.Tool) *Builder {
	b.opts = append(b.opts, WithTools(tool))
	return b
}

// AddTools appends the tools, preserving the order.
func (b *Builder) AddTools(list ...tools.Tool) *Builder {
	b.opts = append(b.opts, WithTools(list...))
	return b
}

// WithOptions appends the options.
func (b *Builder) WithOptions(opts ...Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build returns the Agent
func (b *Builder) Build() (*Agent, error) {
	return New(b.name, b.model, b.opts...)
}
