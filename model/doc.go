// Package model provides ChatModel implementations.
//
// Anthropic adapts the Anthropic Messages API: it converts agentscope
// messages and tool schemas to API parameters, maps tool_use blocks back
// into the message model, and prices token usage per model.
package model
