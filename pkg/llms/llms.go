package llms

import (
	"context"

	"github.com/effective-security/adk/chatmodel"
	"github.com/effective-security/adk/tools"
)

//go:generate mockgen -source=llms.go -destination=../../mocks/mockllms/llms_mock.gen.go -package mockllms

// ProviderType is the type of provider.
type ProviderType string

const (
	// ProviderAnthropic is the type of provider.
	ProviderAnthropic ProviderType = "ANTHROPIC"
	// ProviderBedrock is the type of provider.
	ProviderBedrock ProviderType = "BEDROCK"
	// ProviderGoogleAI is the type of provider.
	ProviderGoogleAI ProviderType = "GOOGLEAI"
	// ProviderOpenAI is the type of provider.
	ProviderOpenAI ProviderType = "OPENAI"
)

// Model is the language model capability used by the agent.
type Model interface {
	// GetName returns the model name
	GetName() string
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// Generate submits the conversation and the tools descriptors,
	// and returns either the final answer or a request to call one tool.
	Generate(ctx context.Context, rc *chatmodel.RunContext, tools []tools.Tool) (*Response, error)
}

// ToolCall is a request from the model to invoke a tool
type ToolCall struct {
	// ID is the provider's call ID, if any
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Name of the tool
	Name string `json:"name" yaml:"name"`
	// Arguments is raw JSON object
	Arguments string `json:"arguments" yaml:"arguments"`
}

// Usage is the tokens usage reported by the provider
type Usage struct {
	InputTokens  int64 `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int64 `json:"output_tokens" yaml:"output_tokens"`
}

// Response of the model: a final text answer, or a tool call
type Response struct {
	Content    string    `json:"content,omitempty" yaml:"content,omitempty"`
	ToolCall   *ToolCall `json:"tool_call,omitempty" yaml:"tool_call,omitempty"`
	StopReason string    `json:"stop_reason,omitempty" yaml:"stop_reason,omitempty"`
	Usage      Usage     `json:"usage" yaml:"usage"`
}

// IsToolCall returns true if the model requested a tool
func (r *Response) IsToolCall() bool {
	return r != nil && r.ToolCall != nil
}

// Answer returns a final answer response
func Answer(content string) *Response {
	return &Response{Content: content}
}

// Call returns a tool call response
func Call(id, name, arguments string) *Response {
	return &Response{ToolCall: &ToolCall{ID: id, Name: name, Arguments: arguments}}
}

// ErrNoResponse returns ModelError for an empty or malformed provider response
func ErrNoResponse() error {
	return chatmodel.NewModelError("no response")
}

// Capability is a bitmask indicating supported features of an LLM provider.
type Capability uint64

const (
	// CapabilityText is basic text or chat generation
	CapabilityText Capability = 1 << iota
	// CapabilityFunctionCalling is tool calling
	CapabilityFunctionCalling
	// CapabilityMultiToolCalling is more than one tool call in a response
	CapabilityMultiToolCalling
	// CapabilitySystemPrompt is system prompt support
	CapabilitySystemPrompt
	// CapabilityJSONResponse is JSON mode
	CapabilityJSONResponse
	// CapabilityVision is image input
	CapabilityVision
)

var providerCapabilities = map[ProviderType]Capability{
	ProviderOpenAI: CapabilityText |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilitySystemPrompt |
		CapabilityJSONResponse |
		CapabilityVision,

	ProviderAnthropic: CapabilityText |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilitySystemPrompt |
		CapabilityJSONResponse,

	ProviderGoogleAI: CapabilityText |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilitySystemPrompt |
		CapabilityJSONResponse |
		CapabilityVision,

	// Bedrock with Anthropic models
	ProviderBedrock: CapabilityText |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilitySystemPrompt |
		CapabilityJSONResponse,
}

// ProviderCapabilities returns the capabilities of the provider
func ProviderCapabilities(pt ProviderType) Capability {
	return providerCapabilities[pt]
}

// Supports returns true if the provider supports the capability
func (p ProviderType) Supports(c Capability) bool {
	return ProviderCapabilities(p)&c != 0
}
