package testutil

import (
	"fmt"

	"github.com/hupe1980/teamflow/core"
)

// StreamBuilder provides a fluent helper for constructing raw event streams in tests.
// Example:
//
//	evs := NewStreamBuilder().Node("coder", 2).Start().ModelStart().Tokens("a", "b").ModelEnd().End().Events()
//
// Chain only the parts you need; chunk ids are generated deterministically.
type StreamBuilder struct {
	node   string
	step   int
	chunks int
	events []core.Event
}

// NewStreamBuilder creates an empty builder.
func NewStreamBuilder() *StreamBuilder { return &StreamBuilder{} }

// Node sets the owning node and step for subsequent events (chainable).
func (b *StreamBuilder) Node(name string, step int) *StreamBuilder {
	b.node, b.step = name, step
	return b
}

// Start appends a node-start event (chainable).
func (b *StreamBuilder) Start() *StreamBuilder {
	b.events = append(b.events, core.NewNodeStartEvent(b.node, b.step))
	return b
}

// End appends a node-end event (chainable).
func (b *StreamBuilder) End() *StreamBuilder {
	b.events = append(b.events, core.NewNodeEndEvent(b.node, b.step))
	return b
}

// ModelStart appends a model-start event (chainable).
func (b *StreamBuilder) ModelStart() *StreamBuilder {
	b.events = append(b.events, core.NewModelStartEvent(b.node, b.step, "mock"))
	return b
}

// ModelEnd appends a model-end event (chainable).
func (b *StreamBuilder) ModelEnd() *StreamBuilder {
	b.events = append(b.events, core.NewModelEndEvent(b.node, b.step, "mock"))
	return b
}

// Tokens appends one content token per fragment (chainable).
func (b *StreamBuilder) Tokens(fragments ...string) *StreamBuilder {
	for _, f := range fragments {
		b.events = append(b.events, core.NewTokenEvent(b.node, b.step, core.Chunk{ID: b.nextChunkID(), Content: f}))
	}
	return b
}

// Reasoning appends a reasoning-only token (chainable).
func (b *StreamBuilder) Reasoning(text string) *StreamBuilder {
	b.events = append(b.events, core.NewTokenEvent(b.node, b.step, core.Chunk{ID: b.nextChunkID(), ReasoningContent: text}))
	return b
}

// Tool appends a tool-start / tool-end pair (chainable). An empty output
// produces a tool-end without output.
func (b *StreamBuilder) Tool(name, runID string, input any, output string) *StreamBuilder {
	b.events = append(b.events, core.NewToolStartEvent(b.node, b.step, name, runID, input))
	var out *string
	if output != "" {
		out = &output
	}
	b.events = append(b.events, core.NewToolEndEvent(b.node, b.step, name, runID, out))
	return b
}

// Raw appends an arbitrary event (chainable).
func (b *StreamBuilder) Raw(ev core.Event) *StreamBuilder {
	b.events = append(b.events, ev)
	return b
}

// Events returns the built stream.
func (b *StreamBuilder) Events() []core.Event { return b.events }

func (b *StreamBuilder) nextChunkID() string {
	b.chunks++
	return fmt.Sprintf("chunk-%d", b.chunks)
}
