package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/internal/util"
)

// DefaultSupervisorDirective is the system directive prepended to the history
// on every supervisor step. It is rendered with text/template; .TeamMembers
// and .Members (core.MemberConfig values) are available.
const DefaultSupervisorDirective = `You are a supervisor tasked with managing a conversation between the following workers: {{ join ", " .TeamMembers }}.
{{- range .Members }}
- {{ .Name }}{{ if .DescForLLM }}: {{ .DescForLLM }}{{ end }}
{{- end }}
Given the following user request, respond with the worker to act next. Each worker will perform a task and respond with their results and status.
When finished, respond with FINISH.
Answer with a JSON object of the form {"next": "<worker or FINISH>"}.`

// Options configures a Graph.
type Options struct {
	// Coordinator, when set, runs first and either answers directly or hands
	// the request off to the planner / supervisor.
	Coordinator core.Agent

	// Planner, when set, writes a plan before the supervisor loop starts.
	Planner core.Agent

	// SupervisorDirective is the template for the supervisor's system message.
	SupervisorDirective string

	// MaxSteps bounds the number of node transitions per run. 0 means unlimited.
	MaxSteps int
}

// Graph is the routing state machine of a team: an optional preamble
// (coordinator, planner) followed by the supervisor loop. After every worker
// step control returns to the supervisor; the run terminates when the
// supervisor decides FINISH.
//
// A Graph is immutable after construction and may serve concurrent runs.
type Graph struct {
	supervisor  core.Decider
	workers     map[string]core.Agent
	names       []string
	coordinator core.Agent
	planner     core.Agent
	directive   string
	maxSteps    int
}

// New builds a graph over the given workers.
func New(supervisor core.Decider, workers []core.Agent, optFns ...func(o *Options)) (*Graph, error) {
	opts := Options{
		SupervisorDirective: DefaultSupervisorDirective,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if supervisor == nil {
		return nil, errors.New("graph: supervisor is required")
	}

	g := &Graph{
		supervisor:  supervisor,
		workers:     make(map[string]core.Agent, len(workers)),
		coordinator: opts.Coordinator,
		planner:     opts.Planner,
		directive:   opts.SupervisorDirective,
		maxSteps:    opts.MaxSteps,
	}

	for _, w := range workers {
		name := w.Name()
		switch name {
		case "", core.Supervisor, core.Coordinator, core.Planner, core.RouteFinish:
			return nil, fmt.Errorf("graph: invalid worker name %q", name)
		}
		if _, dup := g.workers[name]; dup {
			return nil, fmt.Errorf("graph: duplicate worker %q", name)
		}
		g.workers[name] = w
		g.names = append(g.names, name)
	}

	return g, nil
}

// Workers returns the registered worker names in registration order.
func (g *Graph) Workers() []string { return slices.Clone(g.names) }

// Run drives the state machine until termination, emitting node events
// through runCtx. The returned state is the same value that was passed in,
// with the run's messages appended.
func (g *Graph) Run(runCtx *core.RunContext, state *core.SharedState) (*core.SharedState, error) {
	for _, name := range state.TeamMembers {
		if _, ok := g.workers[name]; !ok {
			return state, fmt.Errorf("graph: no worker registered for team member %q", name)
		}
	}

	node := g.entry()
	for node != "" {
		if g.maxSteps > 0 && runCtx.Step() >= g.maxSteps {
			return state, fmt.Errorf("%w (%d)", core.ErrStepLimit, g.maxSteps)
		}

		next, err := g.step(runCtx, node, state)
		if err != nil {
			return state, err
		}
		node = next
	}

	runCtx.LogInfo("graph.run.complete", "steps", runCtx.Step(), "messages", len(state.Messages), "model_calls", runCtx.ModelCalls())

	return state, nil
}

func (g *Graph) entry() string {
	switch {
	case g.coordinator != nil:
		return core.Coordinator
	case g.planner != nil:
		return core.Planner
	default:
		return core.Supervisor
	}
}

// step executes one node and returns the next one ("" terminates).
func (g *Graph) step(runCtx *core.RunContext, node string, state *core.SharedState) (string, error) {
	step := runCtx.NextStep()
	nodeCtx := runCtx.ForNode(node)

	if err := nodeCtx.EmitEvent(core.NewNodeStartEvent(node, step)); err != nil {
		return "", err
	}

	nodeCtx.LogDebug("graph.node.start")

	var (
		next string
		err  error
	)
	switch node {
	case core.Coordinator:
		next, err = g.coordinate(nodeCtx, state)
	case core.Planner:
		next, err = g.plan(nodeCtx, state)
	case core.Supervisor:
		next, err = g.supervise(nodeCtx, state)
	default:
		next, err = g.work(nodeCtx, node, state)
	}
	if err != nil {
		nodeCtx.LogError("graph.node.error", "error", err.Error())
		return "", err
	}

	if err := nodeCtx.EmitEvent(core.NewNodeEndEvent(node, step)); err != nil {
		return "", err
	}

	nodeCtx.LogDebug("graph.node.end", "next", next)

	return next, nil
}

func (g *Graph) coordinate(runCtx *core.RunContext, state *core.SharedState) (string, error) {
	msg, err := invoke(runCtx, g.coordinator, state)
	if err != nil {
		return "", err
	}

	if core.IsHandoff(msg.Content) {
		runCtx.LogInfo("graph.coordinator.handoff")
		if g.planner != nil {
			return core.Planner, nil
		}
		return core.Supervisor, nil
	}

	state.Append(core.NewAgentMessage(core.Coordinator, msg.Content))

	return "", nil
}

func (g *Graph) plan(runCtx *core.RunContext, state *core.SharedState) (string, error) {
	msg, err := invoke(runCtx, g.planner, state)
	if err != nil {
		return "", err
	}

	state.Append(core.NewAgentMessage(core.Planner, msg.Content))

	return core.Supervisor, nil
}

func (g *Graph) supervise(runCtx *core.RunContext, state *core.SharedState) (string, error) {
	directive, err := util.RenderTemplate(g.directive, directiveData(state))
	if err != nil {
		return "", fmt.Errorf("render supervisor directive: %w", err)
	}

	history := append([]core.Message{core.NewSystemMessage(directive)}, state.Messages...)

	d, err := g.supervisor.Decide(runCtx, history)
	if err != nil {
		return "", agentError(runCtx, err)
	}
	if err := d.Validate(state.TeamMembers); err != nil {
		return "", err
	}

	state.Next = d.Next

	if d.Terminate() {
		runCtx.LogInfo("graph.supervisor.finish")
		return "", nil
	}

	runCtx.LogInfo("graph.supervisor.delegate", "next", d.Next)

	return d.Next, nil
}

func (g *Graph) work(runCtx *core.RunContext, name string, state *core.SharedState) (string, error) {
	msg, err := invoke(runCtx, g.workers[name], state)
	if err != nil {
		return "", err
	}

	state.Append(core.NewAgentMessage(name, msg.Content))

	return core.Supervisor, nil
}

func invoke(runCtx *core.RunContext, a core.Agent, state *core.SharedState) (core.Message, error) {
	msg, err := a.Invoke(runCtx, state)
	if err != nil {
		return core.Message{}, agentError(runCtx, err)
	}
	return msg, nil
}

// agentError attributes a collaborator failure to the current node.
// Cancellation passes through unchanged.
func agentError(runCtx *core.RunContext, err error) error {
	if ctxErr := runCtx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return err
	}
	return &core.AgentError{Agent: runCtx.Node, Err: err}
}

func directiveData(state *core.SharedState) map[string]any {
	members := make([]core.MemberConfig, 0, len(state.TeamMembers))
	for _, name := range state.TeamMembers {
		cfg, ok := state.MemberConfigs[name]
		if !ok {
			cfg = core.MemberConfig{Name: name}
		}
		members = append(members, cfg)
	}
	return map[string]any{
		"TeamMembers": state.TeamMembers,
		"Members":     members,
	}
}
