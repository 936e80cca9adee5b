package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teamflow/core"
)

func scriptedDecider(routes ...string) (core.Decider, *[][]core.Message) {
	var seen [][]core.Message
	i := 0
	return core.DeciderFunc(func(_ *core.RunContext, history []core.Message) (core.Decision, error) {
		seen = append(seen, history)
		next := routes[len(routes)-1]
		if i < len(routes) {
			next = routes[i]
			i++
		}
		return core.Decision{Next: next}, nil
	}), &seen
}

func replyAgent(name, reply string) core.AgentFunc {
	return core.AgentFunc{AgentName: name, Fn: func(*core.RunContext, *core.SharedState) (core.Message, error) {
		return core.Message{Role: core.RoleAssistant, Content: reply}, nil
	}}
}

func workers() []core.Agent {
	return []core.Agent{
		replyAgent(core.Researcher, "found it"),
		replyAgent(core.Coder, "coded it"),
		replyAgent(core.Browser, "browsed it"),
		replyAgent(core.FileManager, "saved it"),
	}
}

func run(t *testing.T, g *Graph, state *core.SharedState) ([]core.Event, *core.SharedState, error) {
	t.Helper()
	emit := make(chan core.Event)
	rc := core.NewRunContext(context.Background(), "run-1", state.TeamMembers, emit, 0, nil)

	type result struct {
		state *core.SharedState
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer close(emit)
		s, err := g.Run(rc, state)
		done <- result{s, err}
	}()

	var evs []core.Event
	for ev := range emit {
		evs = append(evs, ev)
	}
	res := <-done
	return evs, res.state, res.err
}

func nodeTrace(evs []core.Event) []string {
	var out []string
	for _, ev := range evs {
		if ev.Kind == core.EventNodeStart {
			out = append(out, ev.Name)
		}
	}
	return out
}

func TestGraph_ResearcherThenFinish(t *testing.T) {
	decider, seen := scriptedDecider(core.Researcher, core.RouteFinish)
	g, err := New(decider, workers())
	require.NoError(t, err)

	state := core.NewSharedState([]core.Message{core.NewUserMessage("find X")}, core.DefaultTeamMembers)
	evs, out, err := run(t, g, state)
	require.NoError(t, err)

	assert.Equal(t, []string{core.Supervisor, core.Researcher, core.Supervisor}, nodeTrace(evs))
	assert.Equal(t, []core.Message{
		core.NewUserMessage("find X"),
		core.NewAgentMessage(core.Researcher, "found it"),
	}, out.Messages)
	assert.Equal(t, core.RouteFinish, out.Next)

	require.Len(t, *seen, 2)
	first := (*seen)[0]
	assert.Equal(t, core.RoleSystem, first[0].Role)
	assert.Contains(t, first[0].Content, "researcher, coder, browser, file_manager")
	assert.Len(t, (*seen)[1], 3)
}

func TestGraph_StepsAreMonotonicAndPaired(t *testing.T) {
	decider, _ := scriptedDecider(core.Coder, core.FileManager, core.RouteFinish)
	g, err := New(decider, workers())
	require.NoError(t, err)

	evs, _, err := run(t, g, core.NewSharedState([]core.Message{core.NewUserMessage("x")}, core.DefaultTeamMembers))
	require.NoError(t, err)

	require.Len(t, evs, 10)
	for i := 0; i < len(evs); i += 2 {
		start, end := evs[i], evs[i+1]
		assert.Equal(t, core.EventNodeStart, start.Kind)
		assert.Equal(t, core.EventNodeEnd, end.Kind)
		assert.Equal(t, start.Name, end.Name)
		assert.Equal(t, i/2+1, start.Step)
		assert.Equal(t, start.Step, end.Step)
	}
}

func TestGraph_UnknownRouteFailsFast(t *testing.T) {
	decider, _ := scriptedDecider("painter")
	g, err := New(decider, workers())
	require.NoError(t, err)

	evs, _, err := run(t, g, core.NewSharedState([]core.Message{core.NewUserMessage("x")}, core.DefaultTeamMembers))
	assert.ErrorIs(t, err, core.ErrUnknownRoute)

	var routeErr *core.RouteError
	require.ErrorAs(t, err, &routeErr)
	assert.Equal(t, "painter", routeErr.Route)
	assert.Equal(t, []string{core.Supervisor}, nodeTrace(evs))
}

func TestGraph_RouteOutsideRunTeam(t *testing.T) {
	decider, _ := scriptedDecider(core.Browser)
	g, err := New(decider, workers())
	require.NoError(t, err)

	state := core.NewSharedState([]core.Message{core.NewUserMessage("x")}, []string{core.Researcher, core.Coder})
	_, _, err = run(t, g, state)
	assert.ErrorIs(t, err, core.ErrUnknownRoute)
}

func TestGraph_WorkerFailure(t *testing.T) {
	boom := errors.New("boom")
	failing := core.AgentFunc{AgentName: core.Coder, Fn: func(*core.RunContext, *core.SharedState) (core.Message, error) {
		return core.Message{}, boom
	}}
	decider, _ := scriptedDecider(core.Coder)
	g, err := New(decider, []core.Agent{failing})
	require.NoError(t, err)

	_, _, err = run(t, g, core.NewSharedState([]core.Message{core.NewUserMessage("x")}, []string{core.Coder}))
	assert.ErrorIs(t, err, boom)

	var agentErr *core.AgentError
	require.ErrorAs(t, err, &agentErr)
	assert.Equal(t, core.Coder, agentErr.Agent)
}

func TestGraph_CoordinatorDirectReply(t *testing.T) {
	decider, seen := scriptedDecider(core.RouteFinish)
	g, err := New(decider, workers(), func(o *Options) {
		o.Coordinator = replyAgent(core.Coordinator, "Hello there!")
		o.Planner = replyAgent(core.Planner, "1. research")
	})
	require.NoError(t, err)

	evs, out, err := run(t, g, core.NewSharedState([]core.Message{core.NewUserMessage("hi")}, core.DefaultTeamMembers))
	require.NoError(t, err)

	assert.Equal(t, []string{core.Coordinator}, nodeTrace(evs))
	assert.Empty(t, *seen)
	assert.Equal(t, core.NewAgentMessage(core.Coordinator, "Hello there!"), out.Messages[1])
}

func TestGraph_CoordinatorHandoff(t *testing.T) {
	decider, _ := scriptedDecider(core.Researcher, core.RouteFinish)
	g, err := New(decider, workers(), func(o *Options) {
		o.Coordinator = replyAgent(core.Coordinator, "handoff_to_planner")
		o.Planner = replyAgent(core.Planner, "1. research")
	})
	require.NoError(t, err)

	evs, out, err := run(t, g, core.NewSharedState([]core.Message{core.NewUserMessage("find X")}, core.DefaultTeamMembers))
	require.NoError(t, err)

	assert.Equal(t, []string{core.Coordinator, core.Planner, core.Supervisor, core.Researcher, core.Supervisor}, nodeTrace(evs))
	assert.Equal(t, []core.Message{
		core.NewUserMessage("find X"),
		core.NewAgentMessage(core.Planner, "1. research"),
		core.NewAgentMessage(core.Researcher, "found it"),
	}, out.Messages)
}

func TestGraph_IndentedHandoffIsDirectReply(t *testing.T) {
	decider, seen := scriptedDecider(core.RouteFinish)
	g, err := New(decider, workers(), func(o *Options) {
		o.Coordinator = replyAgent(core.Coordinator, " handoff_to_planner")
		o.Planner = replyAgent(core.Planner, "1. research")
	})
	require.NoError(t, err)

	evs, out, err := run(t, g, core.NewSharedState([]core.Message{core.NewUserMessage("hi")}, core.DefaultTeamMembers))
	require.NoError(t, err)

	assert.Equal(t, []string{core.Coordinator}, nodeTrace(evs))
	assert.Empty(t, *seen)
	assert.Equal(t, core.NewAgentMessage(core.Coordinator, " handoff_to_planner"), out.Messages[1])
}

func TestGraph_HandoffWithoutPlanner(t *testing.T) {
	decider, _ := scriptedDecider(core.RouteFinish)
	g, err := New(decider, workers(), func(o *Options) {
		o.Coordinator = replyAgent(core.Coordinator, "handoff_to_planner")
	})
	require.NoError(t, err)

	evs, _, err := run(t, g, core.NewSharedState([]core.Message{core.NewUserMessage("x")}, core.DefaultTeamMembers))
	require.NoError(t, err)
	assert.Equal(t, []string{core.Coordinator, core.Supervisor}, nodeTrace(evs))
}

func TestGraph_MaxSteps(t *testing.T) {
	decider, _ := scriptedDecider(core.Researcher)
	g, err := New(decider, workers(), func(o *Options) { o.MaxSteps = 5 })
	require.NoError(t, err)

	evs, _, err := run(t, g, core.NewSharedState([]core.Message{core.NewUserMessage("x")}, core.DefaultTeamMembers))
	assert.ErrorIs(t, err, core.ErrStepLimit)
	assert.Len(t, nodeTrace(evs), 5)
}

func TestGraph_UnregisteredTeamMember(t *testing.T) {
	decider, _ := scriptedDecider(core.RouteFinish)
	g, err := New(decider, []core.Agent{replyAgent(core.Coder, "x")})
	require.NoError(t, err)

	_, _, err = run(t, g, core.NewSharedState([]core.Message{core.NewUserMessage("x")}, core.DefaultTeamMembers))
	assert.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	decider, _ := scriptedDecider(core.RouteFinish)

	_, err := New(nil, workers())
	assert.Error(t, err)

	_, err = New(decider, []core.Agent{replyAgent(core.Coder, ""), replyAgent(core.Coder, "")})
	assert.Error(t, err)

	_, err = New(decider, []core.Agent{replyAgent(core.Supervisor, "")})
	assert.Error(t, err)

	g, err := New(decider, workers())
	require.NoError(t, err)
	assert.Equal(t, core.DefaultTeamMembers, g.Workers())
}

func TestGraph_CancelledBeforeStart(t *testing.T) {
	decider, _ := scriptedDecider(core.RouteFinish)
	g, err := New(decider, workers())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rc := core.NewRunContext(ctx, "run-1", core.DefaultTeamMembers, make(chan core.Event), 0, nil)

	_, err = g.Run(rc, core.NewSharedState([]core.Message{core.NewUserMessage("x")}, core.DefaultTeamMembers))
	assert.ErrorIs(t, err, context.Canceled)
}
