package agent

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/tool"
)

// toolExecutor runs a batch of function calls one after another on behalf of
// a node. Every call gets its own invocation id and is bracketed by
// tool-start / tool-end raw events. Tool failures are returned to the model
// as error responses; only cancellation and emission failures abort.
type toolExecutor struct {
	agentName string
	tools     map[string]tool.Tool
}

func newToolExecutor(agentName string, tools []tool.Tool) *toolExecutor {
	registry := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		registry[t.Name()] = t
	}
	return &toolExecutor{agentName: agentName, tools: registry}
}

// execute returns one function response part per call, in call order.
func (e *toolExecutor) execute(runCtx *core.RunContext, calls []core.FunctionCall) ([]core.Part, error) {
	parts := make([]core.Part, 0, len(calls))
	for _, fc := range calls {
		if err := runCtx.Err(); err != nil {
			return nil, err
		}
		fr, err := e.executeSingle(runCtx, fc)
		if err != nil {
			return nil, err
		}
		parts = append(parts, core.FunctionResponsePart{FunctionResponse: fr})
	}
	return parts, nil
}

func (e *toolExecutor) executeSingle(runCtx *core.RunContext, fc core.FunctionCall) (core.FunctionResponse, error) {
	if fc.ID == "" {
		fc.ID = core.NewID()
	}
	invocationID := core.NewID()

	args := map[string]any{}
	var argErr error
	if fc.Arguments != "" {
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			argErr = tool.NewToolError(fc.Name, fmt.Sprintf("invalid arguments: %v", err), tool.CodeBadInput)
		}
	}

	if err := runCtx.EmitEvent(core.NewToolStartEvent(runCtx.Node, runCtx.Step(), fc.Name, invocationID, args)); err != nil {
		return core.FunctionResponse{}, err
	}

	start := time.Now()
	var value any
	err := argErr
	if err == nil {
		value, err = e.call(runCtx, fc, args)
	}

	runCtx.LogInfo(
		"agent.tool.executed",
		"agent", e.agentName,
		"tool", fc.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	fr := core.FunctionResponse{ID: fc.ID, Name: fc.Name, Response: value}
	var output *string
	if err != nil {
		fr.Error = err.Error()
		output = &fr.Error
	} else if text := resultText(value); text != "" {
		output = &text
	}

	if emitErr := runCtx.EmitEvent(core.NewToolEndEvent(runCtx.Node, runCtx.Step(), fc.Name, invocationID, output)); emitErr != nil {
		return core.FunctionResponse{}, emitErr
	}

	return fr, nil
}

func (e *toolExecutor) call(runCtx *core.RunContext, fc core.FunctionCall, args map[string]any) (result any, err error) {
	t, ok := e.tools[fc.Name]
	if !ok {
		return nil, tool.NewToolError(fc.Name, "tool not found", tool.CodeNotFound)
	}

	defer func() {
		if r := recover(); r != nil {
			runCtx.LogError("agent.tool.panic", "agent", e.agentName, "tool", fc.Name, "recover", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return t.Call(core.NewToolContext(runCtx, e.agentName, fc.ID), args)
}

func resultText(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return r
	case fmt.Stringer:
		return r.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
