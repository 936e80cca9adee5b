package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teamflow/core"
)

func drain(t *testing.T, respCh <-chan Response, errCh <-chan error) ([]Response, error) {
	t.Helper()
	var out []Response
	for r := range respCh {
		out = append(out, r)
	}
	return out, <-errCh
}

func TestMockModel_Streaming(t *testing.T) {
	m := NewMockModel("mock", MockTurn{Reasoning: []string{"hmm"}, Fragments: []string{"Hel", "lo"}})

	respCh, errCh := m.Generate(context.Background(), Request{Stream: true})
	resps, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	require.Len(t, resps, 4)

	assert.Equal(t, "hmm", resps[0].ReasoningContent)
	assert.True(t, resps[1].Partial)
	assert.Equal(t, "Hel", resps[1].Content.Text())
	assert.False(t, resps[3].Partial)
	assert.Equal(t, "Hello", resps[3].Content.Text())
	assert.Equal(t, "stop", resps[3].FinishReason)
}

func TestMockModel_ToolCallsAndRepeat(t *testing.T) {
	m := NewMockModel("mock",
		MockTurn{ToolCalls: []core.FunctionCall{{ID: "c1", Name: "search", Arguments: `{"query":"go"}`}}},
		MockTurn{Fragments: []string{"done"}},
	)

	respCh, errCh := m.Generate(context.Background(), Request{})
	resps, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "tool_calls", resps[0].FinishReason)
	assert.Len(t, resps[0].Content.FunctionCalls(), 1)

	for i := 0; i < 2; i++ {
		respCh, errCh := m.Generate(context.Background(), Request{})
		resps, err = drain(t, respCh, errCh)
		require.NoError(t, err)
		assert.Equal(t, "done", resps[0].Content.Text())
	}
	assert.Len(t, m.Requests(), 3)
}

func TestMockModel_Error(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockModel("mock", MockTurn{Err: boom})

	respCh, errCh := m.Generate(context.Background(), Request{})
	_, err := drain(t, respCh, errCh)
	assert.ErrorIs(t, err, boom)
}

func TestFromMessages(t *testing.T) {
	contents := FromMessages([]core.Message{
		core.NewSystemMessage("directive"),
		core.NewUserMessage("task"),
		core.NewAgentMessage(core.Coder, "result"),
	})

	require.Len(t, contents, 3)
	assert.Equal(t, RoleSystem, contents[0].Role)
	assert.Equal(t, "task", contents[1].Text())
	assert.Equal(t, "[coder] result", contents[2].Text())
}
