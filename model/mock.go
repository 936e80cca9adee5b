package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/teamflow/core"
)

// MockTurn is one scripted model turn.
type MockTurn struct {
	// Fragments are streamed as partial responses when the request streams.
	Fragments []string
	// Reasoning fragments are streamed before the text fragments.
	Reasoning []string
	// ToolCalls are returned in the final response.
	ToolCalls []core.FunctionCall
	// Err fails the turn.
	Err error
}

// MockModel is a lightweight in‑memory Model useful for tests & examples. It
// plays scripted turns in order and repeats the last one when exhausted.
type MockModel struct {
	info Info

	mu       sync.Mutex
	turns    []MockTurn
	next     int
	requests []Request
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name string, turns ...MockTurn) *MockModel {
	return &MockModel{
		info:  Info{Name: name, Provider: "mock", SupportsTools: true},
		turns: turns,
	}
}

// Requests returns the requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

func (m *MockModel) nextTurn(req Request) (MockTurn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.turns) == 0 {
		return MockTurn{}, false
	}
	i := m.next
	if i >= len(m.turns) {
		i = len(m.turns) - 1
	} else {
		m.next++
	}
	return m.turns[i], true
}

// Generate implements Model; emits optional streaming chunks then a final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		turn, ok := m.nextTurn(req)
		if !ok {
			errCh <- fmt.Errorf("mock model %s: no scripted turns", m.info.Name)
			return
		}
		if turn.Err != nil {
			errCh <- turn.Err
			return
		}

		id := core.NewID()
		var full string
		if req.Stream {
			for _, r := range turn.Reasoning {
				if !Send(ctx, respCh, Response{ID: id, Partial: true, ReasoningContent: r}) {
					errCh <- ctx.Err()
					return
				}
			}
		}
		for _, f := range turn.Fragments {
			full += f
			if !req.Stream {
				continue
			}
			if !Send(ctx, respCh, Response{ID: id, Partial: true, Content: TextContent(RoleAssistant, f)}) {
				errCh <- ctx.Err()
				return
			}
		}

		final := Response{ID: id, Content: Content{Role: RoleAssistant}, FinishReason: "stop"}
		if full != "" {
			final.Content.Parts = append(final.Content.Parts, core.TextPart{Text: full})
		}
		for _, tc := range turn.ToolCalls {
			final.Content.Parts = append(final.Content.Parts, core.FunctionCallPart{FunctionCall: tc})
			final.FinishReason = "tool_calls"
		}
		if !Send(ctx, respCh, final) {
			errCh <- ctx.Err()
		}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
