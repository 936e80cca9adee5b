// Package translator turns the raw event stream of a run into the compact
// external protocol. Translation is a pure function of the raw event and a
// small amount of run-scoped state (the coordinator buffer and whether the
// workflow has started).
package translator

import (
	"slices"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/logging"
	"github.com/hupe1980/teamflow/protocol"
)

// Options configures a Translator.
type Options struct {
	Logger logging.Logger
}

// Translator is bound to one run and must not be shared.
type Translator struct {
	workflowID  string
	input       []protocol.Message
	teamMembers []string
	streaming   []string
	coordinator coordinatorBuffer
	started     bool
	logger      logging.Logger
}

// New creates a Translator for the run workflowID.
func New(workflowID string, input []core.Message, teamMembers []string, optFns ...func(o *Options)) *Translator {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	streaming := append(slices.Clone(teamMembers), core.Planner, core.Coordinator)

	return &Translator{
		workflowID:  workflowID,
		input:       protocol.FromMessages(input),
		teamMembers: slices.Clone(teamMembers),
		streaming:   streaming,
		logger:      opts.Logger,
	}
}

// WorkflowStarted reports whether start_of_workflow has been emitted.
func (t *Translator) WorkflowStarted() bool { return t.started }

// Translate maps one raw event to zero or more external events. Only the
// planner's start produces two (start_of_workflow then start_of_agent).
func (t *Translator) Translate(ev core.Event) []protocol.Event {
	r, ok := dispatch[ev.Kind]
	if !ok || !r.guard(t, ev) {
		return nil
	}
	out := r.handle(t, ev)
	if len(out) > 0 {
		t.logger.Debug("translator.event", "raw", ev.Kind.String(), "node", ev.Node, "emitted", len(out))
	}
	return out
}

// rule couples a guard (is this raw event visible at all?) with the handler
// producing the external events.
type rule struct {
	guard  func(t *Translator, ev core.Event) bool
	handle func(t *Translator, ev core.Event) []protocol.Event
}

var dispatch = map[core.EventKind]rule{
	core.EventNodeStart:  {guard: (*Translator).namedStreaming, handle: (*Translator).nodeStart},
	core.EventNodeEnd:    {guard: (*Translator).namedStreaming, handle: (*Translator).nodeEnd},
	core.EventModelStart: {guard: (*Translator).ownedStreaming, handle: (*Translator).modelStart},
	core.EventModelEnd:   {guard: (*Translator).ownedStreaming, handle: (*Translator).modelEnd},
	core.EventModelToken: {guard: (*Translator).ownedStreaming, handle: (*Translator).token},
	core.EventToolStart:  {guard: (*Translator).ownedByTeam, handle: (*Translator).toolStart},
	core.EventToolEnd:    {guard: (*Translator).ownedByTeam, handle: (*Translator).toolEnd},
}

func (t *Translator) namedStreaming(ev core.Event) bool {
	return slices.Contains(t.streaming, ev.Name)
}

func (t *Translator) ownedStreaming(ev core.Event) bool {
	return slices.Contains(t.streaming, ev.Node)
}

func (t *Translator) ownedByTeam(ev core.Event) bool {
	return slices.Contains(t.teamMembers, ev.Node)
}

func (t *Translator) nodeStart(ev core.Event) []protocol.Event {
	start := protocol.NewStartOfAgent(t.workflowID, ev.Name, ev.Step)
	if ev.Name == core.Planner && !t.started {
		t.started = true
		return []protocol.Event{protocol.NewStartOfWorkflow(t.workflowID, t.input), start}
	}
	return []protocol.Event{start}
}

func (t *Translator) nodeEnd(ev core.Event) []protocol.Event {
	return []protocol.Event{protocol.NewEndOfAgent(t.workflowID, ev.Name, ev.Step)}
}

func (t *Translator) modelStart(ev core.Event) []protocol.Event {
	return []protocol.Event{protocol.NewStartOfLLM(ev.Node)}
}

func (t *Translator) modelEnd(ev core.Event) []protocol.Event {
	end := protocol.NewEndOfLLM(ev.Node)
	if ev.Node == core.Coordinator {
		if id, content, ok := t.coordinator.flush(); ok {
			return []protocol.Event{protocol.NewContentMessage(id, content), end}
		}
	}
	return []protocol.Event{end}
}

func (t *Translator) token(ev core.Event) []protocol.Event {
	if ev.Chunk == nil {
		return nil
	}
	c := *ev.Chunk

	if c.Content == "" {
		if c.ReasoningContent == "" {
			return nil
		}
		return []protocol.Event{protocol.NewReasoningMessage(c.ID, c.ReasoningContent)}
	}

	if ev.Node != core.Coordinator {
		return []protocol.Event{protocol.NewContentMessage(c.ID, c.Content)}
	}

	content, ok := t.coordinator.push(c.ID, c.Content)
	if !ok {
		return nil
	}
	return []protocol.Event{protocol.NewContentMessage(c.ID, content)}
}

func (t *Translator) toolStart(ev core.Event) []protocol.Event {
	id := protocol.ToolCallID(t.workflowID, ev.Node, ev.Name, ev.RunID)
	return []protocol.Event{protocol.NewToolCall(id, ev.Name, ev.Input)}
}

func (t *Translator) toolEnd(ev core.Event) []protocol.Event {
	id := protocol.ToolCallID(t.workflowID, ev.Node, ev.Name, ev.RunID)
	var result string
	if ev.Output != nil {
		result = *ev.Output
	}
	return []protocol.Event{protocol.NewToolCallResult(id, ev.Name, result)}
}
