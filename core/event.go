package core

import (
	"time"

	"github.com/google/uuid"
)

// EventKind enumerates the raw lifecycle events produced while a run executes.
type EventKind int

const (
	// EventUnknown is the zero value and is never emitted by teamflow itself.
	EventUnknown EventKind = iota
	// EventNodeStart marks entry into a graph node.
	EventNodeStart
	// EventNodeEnd marks exit from a graph node.
	EventNodeEnd
	// EventModelStart marks the start of a model call.
	EventModelStart
	// EventModelEnd marks the end of a model call.
	EventModelEnd
	// EventModelToken carries a streamed model fragment.
	EventModelToken
	// EventToolStart marks the start of a tool invocation.
	EventToolStart
	// EventToolEnd marks the end of a tool invocation.
	EventToolEnd
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventNodeStart:
		return "node_start"
	case EventNodeEnd:
		return "node_end"
	case EventModelStart:
		return "model_start"
	case EventModelEnd:
		return "model_end"
	case EventModelToken:
		return "model_token"
	case EventToolStart:
		return "tool_start"
	case EventToolEnd:
		return "tool_end"
	default:
		return "unknown"
	}
}

// Chunk is a streamed model fragment.
type Chunk struct {
	ID               string
	Content          string
	ReasoningContent string
}

// Event is a raw, internal lifecycle record. Node and Step identify the graph
// node that owns the event; Name is the node, model or tool name depending on
// Kind; RunID identifies the producing invocation (used for tool calls).
//
// Events are treated as immutable after emission.
type Event struct {
	Kind      EventKind
	Name      string
	RunID     string
	Node      string
	Step      int
	Chunk     *Chunk
	Input     any
	Output    *string
	Timestamp time.Time
}

func newEvent(kind EventKind, node string, step int, name string) Event {
	return Event{Kind: kind, Node: node, Step: step, Name: name, Timestamp: time.Now().UTC()}
}

// NewNodeStartEvent marks entry into node.
func NewNodeStartEvent(node string, step int) Event {
	return newEvent(EventNodeStart, node, step, node)
}

// NewNodeEndEvent marks exit from node.
func NewNodeEndEvent(node string, step int) Event {
	return newEvent(EventNodeEnd, node, step, node)
}

// NewModelStartEvent marks the start of a model call owned by node.
func NewModelStartEvent(node string, step int, model string) Event {
	return newEvent(EventModelStart, node, step, model)
}

// NewModelEndEvent marks the end of a model call owned by node.
func NewModelEndEvent(node string, step int, model string) Event {
	return newEvent(EventModelEnd, node, step, model)
}

// NewTokenEvent carries one streamed fragment of a model owned by node.
func NewTokenEvent(node string, step int, chunk Chunk) Event {
	ev := newEvent(EventModelToken, node, step, "")
	ev.Chunk = &chunk
	return ev
}

// NewToolStartEvent marks the start of tool invocation runID.
func NewToolStartEvent(node string, step int, tool, runID string, input any) Event {
	ev := newEvent(EventToolStart, node, step, tool)
	ev.RunID = runID
	ev.Input = input
	return ev
}

// NewToolEndEvent marks the end of tool invocation runID. output is nil when
// the tool produced nothing.
func NewToolEndEvent(node string, step int, tool, runID string, output *string) Event {
	ev := newEvent(EventToolEnd, node, step, tool)
	ev.RunID = runID
	ev.Output = output
	return ev
}

// NewID generates a new unique identifier.
func NewID() string { return uuid.NewString() }
