// Package llms defines the Model boundary the agent loop talks to.
//
// Subpackages implement the Model for specific providers. They share the
// conversion helpers of this package: a conversation is flattened into a
// system prompt and provider neutral turns, where every tool message becomes
// an assistant tool call followed by the tool result.
package llms
