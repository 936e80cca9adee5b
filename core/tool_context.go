package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/teamflow/logging"
)

// ToolContext provides a constrained surface for tool / function
// implementations invoked by an agent: the cancellation context, correlation
// identifiers and a logger scoped to the call.
type ToolContext struct {
	runCtx         *RunContext
	functionCallID string
	agentName      string
}

// NewToolContext constructs a tool context bound to a parent RunContext
// and unique functionCallID.
func NewToolContext(runCtx *RunContext, agentName, functionCallID string) *ToolContext {
	return &ToolContext{
		runCtx:         runCtx,
		functionCallID: functionCallID,
		agentName:      agentName,
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.runCtx.Context }

// RunID returns the run ID associated with the tool invocation.
func (tc *ToolContext) RunID() string { return tc.runCtx.RunID }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.runCtx.Logger() }

// LogInfo logs an info message tagged with the calling agent and function call.
func (tc *ToolContext) LogInfo(msg string, args ...any) {
	tc.runCtx.LogInfo(msg, append([]any{"agent", tc.agentName, "function_call_id", tc.functionCallID}, args...)...)
}

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// AgentName returns the agent name associated with the tool invocation.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// Validate performs a structural sanity check of the context.
func (tc *ToolContext) Validate() error {
	if tc.runCtx == nil || tc.runCtx.RunID == "" || tc.functionCallID == "" {
		return fmt.Errorf("invalid ToolContext")
	}

	return nil
}
