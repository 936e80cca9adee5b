package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/internal/testutil"
	"github.com/hupe1980/teamflow/protocol"
)

func newTestTranslator() *Translator {
	return New("wf", []core.Message{core.NewUserMessage("hi")}, core.DefaultTeamMembers)
}

func translateAll(tr *Translator, evs []core.Event) []protocol.Event {
	var out []protocol.Event
	for _, ev := range evs {
		out = append(out, tr.Translate(ev)...)
	}
	return out
}

func types(evs []protocol.Event) []protocol.Type {
	out := make([]protocol.Type, len(evs))
	for i, ev := range evs {
		out[i] = ev.Event
	}
	return out
}

func contents(evs []protocol.Event) []string {
	var out []string
	for _, ev := range evs {
		if d, ok := ev.Data.(protocol.MessageData); ok {
			out = append(out, d.Delta.Content)
		}
	}
	return out
}

func TestTranslate_WorkerNode(t *testing.T) {
	tr := newTestTranslator()
	evs := testutil.NewStreamBuilder().Node(core.Coder, 4).
		Start().ModelStart().Tokens("print", "(1)").ModelEnd().
		Tool("python_repl", "r1", map[string]any{"code": "print(1)"}, "1").
		End().Events()

	out := translateAll(tr, evs)

	assert.Equal(t, []protocol.Type{
		protocol.StartOfAgent, protocol.StartOfLLM, protocol.MessageDelta, protocol.MessageDelta,
		protocol.EndOfLLM, protocol.ToolCall, protocol.ToolCallResult, protocol.EndOfAgent,
	}, types(out))
	assert.Equal(t, protocol.AgentData{AgentName: "coder", AgentID: "wf_coder_4"}, out[0].Data)
	assert.Equal(t, protocol.ToolCallData{
		ToolCallID: "wf_coder_python_repl_r1",
		ToolName:   "python_repl",
		ToolInput:  map[string]any{"code": "print(1)"},
	}, out[5].Data)
	assert.Equal(t, protocol.ToolCallResultData{ToolCallID: "wf_coder_python_repl_r1", ToolName: "python_repl", ToolResult: "1"}, out[6].Data)
	assert.Equal(t, protocol.AgentData{AgentName: "coder", AgentID: "wf_coder_4"}, out[7].Data)
	assert.False(t, tr.WorkflowStarted())
}

func TestTranslate_PlannerStartsWorkflow(t *testing.T) {
	tr := newTestTranslator()

	out := tr.Translate(core.NewNodeStartEvent(core.Planner, 2))

	require.Len(t, out, 2)
	assert.Equal(t, protocol.StartOfWorkflow, out[0].Event)
	assert.Equal(t, protocol.WorkflowData{
		WorkflowID: "wf",
		Input:      []protocol.Message{{Role: "user", Content: "hi"}},
	}, out[0].Data)
	assert.Equal(t, protocol.StartOfAgent, out[1].Event)
	assert.True(t, tr.WorkflowStarted())
}

func TestTranslate_Suppressed(t *testing.T) {
	tr := New("wf", nil, []string{core.Coder})

	tests := []struct {
		name string
		ev   core.Event
	}{
		{"supervisor node start", core.NewNodeStartEvent(core.Supervisor, 1)},
		{"supervisor model start", core.NewModelStartEvent(core.Supervisor, 1, "m")},
		{"supervisor token", core.NewTokenEvent(core.Supervisor, 1, core.Chunk{ID: "c", Content: "{"})},
		{"worker outside team", core.NewNodeStartEvent(core.Browser, 1)},
		{"empty token", core.NewTokenEvent(core.Coder, 1, core.Chunk{ID: "c"})},
		{"planner tool call", core.NewToolStartEvent(core.Planner, 1, "search", "r", nil)},
		{"unknown kind", core.Event{Kind: core.EventUnknown, Name: core.Coder, Node: core.Coder}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, tr.Translate(tt.ev))
		})
	}
}

func TestTranslate_ReasoningToken(t *testing.T) {
	tr := newTestTranslator()
	evs := testutil.NewStreamBuilder().Node(core.Planner, 2).Reasoning("let me think").Events()

	out := translateAll(tr, evs)

	require.Len(t, out, 1)
	assert.Equal(t, protocol.MessageData{MessageID: "chunk-1", Delta: protocol.Delta{ReasoningContent: "let me think"}}, out[0].Data)
}

func TestTranslate_ToolEndWithoutOutput(t *testing.T) {
	tr := newTestTranslator()

	out := tr.Translate(core.NewToolEndEvent(core.Browser, 3, "browser", "r9", nil))

	require.Len(t, out, 1)
	assert.Equal(t, "", out[0].Data.(protocol.ToolCallResultData).ToolResult)
}

func TestCoordinator_Handoff(t *testing.T) {
	tr := newTestTranslator()
	evs := testutil.NewStreamBuilder().Node(core.Coordinator, 1).
		ModelStart().Tokens("hand", "off", "_to", "_planner", "()").ModelEnd().Events()

	out := translateAll(tr, evs)

	assert.Equal(t, []protocol.Type{protocol.StartOfLLM, protocol.EndOfLLM}, types(out))
}

func TestCoordinator_HandoffInFirstFragment(t *testing.T) {
	tr := newTestTranslator()
	evs := testutil.NewStreamBuilder().Node(core.Coordinator, 1).Tokens("handoff_to_planner", "x", "y", "z").Events()

	assert.Empty(t, translateAll(tr, evs))
}

func TestCoordinator_IndentedHandoffIsShown(t *testing.T) {
	tr := newTestTranslator()
	evs := testutil.NewStreamBuilder().Node(core.Coordinator, 1).
		ModelStart().Tokens(" hand", "off", "_to_planner").ModelEnd().Events()

	out := translateAll(tr, evs)

	require.Equal(t, []protocol.Type{protocol.StartOfLLM, protocol.MessageDelta, protocol.EndOfLLM}, types(out))
	assert.Equal(t, " handoff_to_planner", out[1].Data.(protocol.MessageData).Delta.Content)
}

func TestCoordinator_DirectReply(t *testing.T) {
	tr := newTestTranslator()
	evs := testutil.NewStreamBuilder().Node(core.Coordinator, 1).
		ModelStart().Tokens("Hel", "lo", " there", "!", " How").ModelEnd().Events()

	out := translateAll(tr, evs)

	assert.Equal(t, []string{"Hello there", "!", " How"}, contents(out))
	assert.Equal(t, protocol.MessageData{MessageID: "chunk-3", Delta: protocol.Delta{Content: "Hello there"}}, out[1].Data)
	assert.Equal(t, protocol.EndOfLLM, out[len(out)-1].Event)
}

func TestCoordinator_ShortReplyFlushedOnModelEnd(t *testing.T) {
	tr := newTestTranslator()
	evs := testutil.NewStreamBuilder().Node(core.Coordinator, 1).
		ModelStart().Tokens("Hi", "!").ModelEnd().Events()

	out := translateAll(tr, evs)

	assert.Equal(t, []protocol.Type{protocol.StartOfLLM, protocol.MessageDelta, protocol.EndOfLLM}, types(out))
	assert.Equal(t, protocol.MessageData{MessageID: "chunk-2", Delta: protocol.Delta{Content: "Hi!"}}, out[1].Data)
}

func TestCoordinator_BufferIsRunScoped(t *testing.T) {
	tr := newTestTranslator()
	first := testutil.NewStreamBuilder().Node(core.Coordinator, 1).Tokens("a", "b", "c").Events()
	second := testutil.NewStreamBuilder().Node(core.Coordinator, 5).Tokens("d", "e").Events()

	out := translateAll(tr, append(first, second...))

	assert.Equal(t, []string{"abc", "d", "e"}, contents(out))
}

func TestCoordinator_OtherNodesUnaffected(t *testing.T) {
	tr := newTestTranslator()
	evs := testutil.NewStreamBuilder().
		Node(core.Coordinator, 1).Tokens("hand", "off").
		Node(core.Planner, 2).Tokens("step", "1").
		Events()

	assert.Equal(t, []string{"step", "1"}, contents(translateAll(tr, evs)))
}
