package teamflow

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teamflow/agent"
	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/model"
	"github.com/hupe1980/teamflow/protocol"
	"github.com/hupe1980/teamflow/tool"
)

// recordingDriver remembers the sessions it served and released.
type recordingDriver struct {
	mu         sync.Mutex
	ran        []string
	terminated []string
}

func (d *recordingDriver) Run(_ context.Context, runID, _ string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ran = append(d.ran, runID)
	return "ok", nil
}

func (d *recordingDriver) Terminate(_ context.Context, runID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.terminated = append(d.terminated, runID)
	return nil
}

func (d *recordingDriver) snapshot() (ran, terminated []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.ran), slices.Clone(d.terminated)
}

// browseOrResearch sends "browse" requests to the browser and everything
// else to a researcher. Any browser reply finishes the run.
func browseOrResearch() core.Decider {
	return core.DeciderFunc(func(_ *core.RunContext, msgs []core.Message) (core.Decision, error) {
		last := msgs[len(msgs)-1]
		switch {
		case last.Name == core.Browser:
			return core.Decision{Next: core.RouteFinish}, nil
		case last.Content == "browse":
			return core.Decision{Next: core.Browser}, nil
		default:
			return core.Decision{Next: core.Researcher}, nil
		}
	})
}

func blockingResearcher(entered chan<- struct{}) core.Agent {
	return core.AgentFunc{AgentName: core.Researcher, Fn: func(runCtx *core.RunContext, _ *core.SharedState) (core.Message, error) {
		entered <- struct{}{}
		<-runCtx.Done()
		return core.Message{}, runCtx.Err()
	}}
}

// cancelRun starts a run that blocks in the researcher and cancels it.
func cancelRun(t *testing.T, tf *TeamFlow, entered <-chan struct{}) string {
	t.Helper()

	runID, eventsCh, errorsCh, err := tf.Stream(context.Background(), []core.Message{core.NewUserMessage("go")})
	require.NoError(t, err)

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range eventsCh {
		}
	}()

	<-entered
	require.NoError(t, tf.Cancel(runID))

	<-drained
	require.ErrorIs(t, <-errorsCh, context.Canceled)
	return runID
}

func routes(next ...string) core.Decider {
	i := 0
	return core.DeciderFunc(func(*core.RunContext, []core.Message) (core.Decision, error) {
		n := next[len(next)-1]
		if i < len(next) {
			n = next[i]
			i++
		}
		return core.Decision{Next: n}, nil
	})
}

func reply(name, content string) core.Agent {
	return core.AgentFunc{AgentName: name, Fn: func(*core.RunContext, *core.SharedState) (core.Message, error) {
		return core.Message{Role: core.RoleAssistant, Content: content}, nil
	}}
}

func TestRunSync(t *testing.T) {
	tf, err := New(routes(core.Researcher, core.RouteFinish), []core.Agent{
		reply(core.Researcher, "found it"),
		reply(core.Coder, "coded it"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{core.Researcher, core.Coder}, tf.TeamMembers())

	runID, events, err := tf.RunSync(context.Background(), []core.Message{core.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	msgs, ok := FinalMessages(events)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, protocol.Message{Role: "user", Content: "found it", Name: core.Researcher}, msgs[1])
}

func TestRunSync_EmptyInput(t *testing.T) {
	tf, err := New(routes(core.RouteFinish), []core.Agent{reply(core.Coder, "x")})
	require.NoError(t, err)

	_, _, err = tf.RunSync(context.Background(), nil)
	require.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestNew_InvalidWorkers(t *testing.T) {
	_, err := New(routes(core.RouteFinish), []core.Agent{reply(core.Coder, "a"), reply(core.Coder, "b")})
	require.Error(t, err)
}

func TestCancel_TerminatesWorkerBrowser(t *testing.T) {
	driver := &recordingDriver{}
	browser := agent.NewModelAgent(core.Browser, model.NewMockModel("m"), func(o *agent.ModelAgentOptions) {
		o.Tools = []tool.Tool{tool.NewBrowserTool(driver)}
	})

	entered := make(chan struct{}, 1)
	tf, err := New(browseOrResearch(), []core.Agent{blockingResearcher(entered), browser}, func(o *Options) {
		o.TerminateTimeout = time.Second
	})
	require.NoError(t, err)

	runID := cancelRun(t, tf, entered)

	_, terminated := driver.snapshot()
	assert.Equal(t, []string{runID}, terminated)
	require.Error(t, tf.Cancel(runID))
}

func TestCancel_LaterRunsStillBrowse(t *testing.T) {
	driver := &recordingDriver{}
	llm := model.NewMockModel("m",
		model.MockTurn{ToolCalls: []core.FunctionCall{{ID: "call-1", Name: "browser", Arguments: `{"instruction":"open example.com"}`}}},
		model.MockTurn{Fragments: []string{"visited"}},
	)
	browser := agent.NewModelAgent(core.Browser, llm, func(o *agent.ModelAgentOptions) {
		o.Tools = []tool.Tool{tool.NewBrowserTool(driver)}
	})

	entered := make(chan struct{}, 1)
	tf, err := New(browseOrResearch(), []core.Agent{blockingResearcher(entered), browser}, func(o *Options) {
		o.TerminateTimeout = time.Second
	})
	require.NoError(t, err)

	cancelled := cancelRun(t, tf, entered)

	runID, events, err := tf.RunSync(context.Background(), []core.Message{core.NewUserMessage("browse")})
	require.NoError(t, err)

	var call protocol.ToolCallData
	var result protocol.ToolCallResultData
	for _, ev := range events {
		switch data := ev.Data.(type) {
		case protocol.ToolCallData:
			call = data
		case protocol.ToolCallResultData:
			result = data
		}
	}
	assert.Equal(t, "browser", result.ToolName)
	assert.Equal(t, "ok", result.ToolResult)
	assert.Equal(t, call.ToolCallID, result.ToolCallID)

	msgs, ok := FinalMessages(events)
	require.True(t, ok)
	assert.Equal(t, protocol.Message{Role: "user", Content: "visited", Name: core.Browser}, msgs[len(msgs)-1])

	ran, terminated := driver.snapshot()
	assert.Equal(t, []string{runID}, ran)
	assert.Equal(t, []string{cancelled}, terminated)
}
