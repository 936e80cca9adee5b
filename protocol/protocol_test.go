package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teamflow/core"
)

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, "wf_coder_3", AgentID("wf", "coder", 3))
	assert.Equal(t, "wf_coder_python_repl_r1", ToolCallID("wf", "coder", "python_repl", "r1"))
}

func TestFromMessages_OmitsEmptyName(t *testing.T) {
	msgs := FromMessages([]core.Message{
		core.NewUserMessage("hi"),
		core.NewAgentMessage(core.Coder, "done"),
	})

	b, err := json.Marshal(msgs)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"role":"user","content":"hi"},{"role":"user","content":"done","name":"coder"}]`, string(b))
}

func TestMessageDelta_OneField(t *testing.T) {
	b, err := json.Marshal(NewReasoningMessage("m1", "thinking"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"message","data":{"message_id":"m1","delta":{"reasoning_content":"thinking"}}}`, string(b))

	b, err = json.Marshal(NewContentMessage("m2", "hello"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"message","data":{"message_id":"m2","delta":{"content":"hello"}}}`, string(b))
}

func TestSSE(t *testing.T) {
	frame, err := NewStartOfLLM("planner").SSE()
	require.NoError(t, err)
	assert.Equal(t, "event: start_of_llm\ndata: {\"agent_name\":\"planner\"}\n\n", string(frame))
}
