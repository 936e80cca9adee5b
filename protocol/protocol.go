// Package protocol defines the external streaming events delivered to clients
// of a run and their JSON payloads.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/teamflow/core"
)

// Type is the external event kind.
type Type string

// External event kinds.
const (
	StartOfWorkflow   Type = "start_of_workflow"
	EndOfWorkflow     Type = "end_of_workflow"
	StartOfAgent      Type = "start_of_agent"
	EndOfAgent        Type = "end_of_agent"
	StartOfLLM        Type = "start_of_llm"
	EndOfLLM          Type = "end_of_llm"
	MessageDelta      Type = "message"
	ToolCall          Type = "tool_call"
	ToolCallResult    Type = "tool_call_result"
	FinalSessionState Type = "final_session_state"

	// Error is not produced by runs. Transports use it to report a terminal
	// run error after the stream has started.
	Error Type = "error"
)

// Event is one record of the external stream.
type Event struct {
	Event Type `json:"event"`
	Data  any  `json:"data"`
}

// Message is the wire form of a conversation message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// WorkflowData is the payload of start_of_workflow.
type WorkflowData struct {
	WorkflowID string    `json:"workflow_id"`
	Input      []Message `json:"input"`
}

// WorkflowEndData is the payload of end_of_workflow.
type WorkflowEndData struct {
	WorkflowID string    `json:"workflow_id"`
	Messages   []Message `json:"messages"`
}

// AgentData is the payload of start_of_agent / end_of_agent.
type AgentData struct {
	AgentName string `json:"agent_name"`
	AgentID   string `json:"agent_id"`
}

// LLMData is the payload of start_of_llm / end_of_llm.
type LLMData struct {
	AgentName string `json:"agent_name"`
}

// Delta is a message fragment. Exactly one of the fields is set.
type Delta struct {
	Content          string `json:"content,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// MessageData is the payload of message.
type MessageData struct {
	MessageID string `json:"message_id"`
	Delta     Delta  `json:"delta"`
}

// ToolCallData is the payload of tool_call.
type ToolCallData struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	ToolInput  any    `json:"tool_input"`
}

// ToolCallResultData is the payload of tool_call_result.
type ToolCallResultData struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	ToolResult string `json:"tool_result"`
}

// SessionStateData is the payload of final_session_state.
type SessionStateData struct {
	Messages []Message `json:"messages"`
}

// FromMessages converts state messages into their wire form.
func FromMessages(msgs []core.Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Message{Role: m.Role, Content: m.Content, Name: m.Name}
	}
	return out
}

// AgentID builds the identifier of one node visit.
func AgentID(workflowID, name string, step int) string {
	return fmt.Sprintf("%s_%s_%d", workflowID, name, step)
}

// ToolCallID builds the identifier of one tool invocation.
func ToolCallID(workflowID, node, tool, runID string) string {
	return fmt.Sprintf("%s_%s_%s_%s", workflowID, node, tool, runID)
}

// NewStartOfWorkflow announces that the planning stage was reached.
func NewStartOfWorkflow(workflowID string, input []Message) Event {
	return Event{Event: StartOfWorkflow, Data: WorkflowData{WorkflowID: workflowID, Input: input}}
}

// NewEndOfWorkflow closes a workflow that was started.
func NewEndOfWorkflow(workflowID string, msgs []Message) Event {
	return Event{Event: EndOfWorkflow, Data: WorkflowEndData{WorkflowID: workflowID, Messages: msgs}}
}

// NewStartOfAgent announces a node visit.
func NewStartOfAgent(workflowID, name string, step int) Event {
	return Event{Event: StartOfAgent, Data: AgentData{AgentName: name, AgentID: AgentID(workflowID, name, step)}}
}

// NewEndOfAgent closes a node visit.
func NewEndOfAgent(workflowID, name string, step int) Event {
	return Event{Event: EndOfAgent, Data: AgentData{AgentName: name, AgentID: AgentID(workflowID, name, step)}}
}

// NewStartOfLLM announces a model call owned by agent.
func NewStartOfLLM(agent string) Event {
	return Event{Event: StartOfLLM, Data: LLMData{AgentName: agent}}
}

// NewEndOfLLM closes a model call owned by agent.
func NewEndOfLLM(agent string) Event {
	return Event{Event: EndOfLLM, Data: LLMData{AgentName: agent}}
}

// NewContentMessage carries a visible text fragment.
func NewContentMessage(id, content string) Event {
	return Event{Event: MessageDelta, Data: MessageData{MessageID: id, Delta: Delta{Content: content}}}
}

// NewReasoningMessage carries a reasoning fragment.
func NewReasoningMessage(id, reasoning string) Event {
	return Event{Event: MessageDelta, Data: MessageData{MessageID: id, Delta: Delta{ReasoningContent: reasoning}}}
}

// NewToolCall announces a tool invocation.
func NewToolCall(id, tool string, input any) Event {
	return Event{Event: ToolCall, Data: ToolCallData{ToolCallID: id, ToolName: tool, ToolInput: input}}
}

// NewToolCallResult reports a tool invocation's output.
func NewToolCallResult(id, tool, result string) Event {
	return Event{Event: ToolCallResult, Data: ToolCallResultData{ToolCallID: id, ToolName: tool, ToolResult: result}}
}

// NewFinalSessionState reports the final conversation.
func NewFinalSessionState(msgs []Message) Event {
	return Event{Event: FinalSessionState, Data: SessionStateData{Messages: msgs}}
}

// ErrorData is the payload of error.
type ErrorData struct {
	Message string `json:"message"`
}

// NewError reports a terminal run error.
func NewError(err error) Event {
	return Event{Event: Error, Data: ErrorData{Message: err.Error()}}
}

// SSE renders the event as a server-sent-events frame.
func (e Event) SSE() ([]byte, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.Event, err)
	}
	frame := make([]byte, 0, len(data)+len(e.Event)+16)
	frame = append(frame, "event: "...)
	frame = append(frame, e.Event...)
	frame = append(frame, "\ndata: "...)
	frame = append(frame, data...)
	frame = append(frame, "\n\n"...)
	return frame, nil
}
