package model

import (
	"context"
	"encoding/json"
)

// ToolCall represents a function call request surfaced by a model provider.
// Unified across vendors so downstream logic does not need per-provider branching.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"` // "function"
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction describes the concrete function target of a tool call.
type ToolCallFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ResponseFormat requests structured output.
type ResponseFormat string

const (
	// FormatText is free-form output.
	FormatText ResponseFormat = ""
	// FormatJSON asks the provider for a single JSON object.
	FormatJSON ResponseFormat = "json_object"
)

// Request captures the normalized model input produced by agents.
type Request struct {
	Instructions   string           `json:"instructions"`
	Contents       []Content        `json:"contents"`
	Tools          []ToolDefinition `json:"tools,omitempty"`
	Stream         bool             `json:"stream,omitempty"`
	ResponseFormat ResponseFormat   `json:"response_format,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model. Partial
// responses carry one streamed fragment: text in Content, or reasoning in
// ReasoningContent. The final response carries the complete turn.
type Response struct {
	ID               string      `json:"id"`
	Partial          bool        `json:"partial"`
	Content          Content     `json:"content"`
	ReasoningContent string      `json:"reasoning_content,omitempty"`
	FinishReason     string      `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage            *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock"
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by agents to drive generation.
// Both channels are closed when generation ends; errors carry at most one value.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Send forwards resp unless ctx is cancelled first.
func Send(ctx context.Context, out chan<- Response, resp Response) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- resp:
		return true
	}
}
