// Package tools defines the Tool interface the agent dispatches model tool calls to,
// and the ways to build one: from a closure of the exact Execute shape,
// from a declared parameter table plus a handler, or from a Go struct describing the input.
package tools
