package core

import (
	"context"
	"errors"
)

// Agent is a node implementation: a worker (researcher, coder, ...) or a
// preamble participant (coordinator, planner). It reads the shared state and
// returns a single result message. Raw model / tool events are emitted through
// the RunContext while it works.
//
// Implementations must respect runCtx cancellation and must not mutate state;
// the graph appends the returned message.
type Agent interface {
	Name() string
	Invoke(runCtx *RunContext, state *SharedState) (Message, error)
}

// Decider is the supervisor's decision function. history already starts with
// the system directive. The returned decision must be validated against the
// run's team members by the implementation or by the caller.
type Decider interface {
	Decide(runCtx *RunContext, history []Message) (Decision, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(runCtx *RunContext, history []Message) (Decision, error)

// Decide calls f.
func (f DeciderFunc) Decide(runCtx *RunContext, history []Message) (Decision, error) {
	return f(runCtx, history)
}

// AgentFunc adapts a function to the Agent interface.
type AgentFunc struct {
	AgentName string
	Fn        func(runCtx *RunContext, state *SharedState) (Message, error)
}

// Name returns the agent name.
func (a AgentFunc) Name() string { return a.AgentName }

// Invoke calls the wrapped function.
func (a AgentFunc) Invoke(runCtx *RunContext, state *SharedState) (Message, error) {
	return a.Fn(runCtx, state)
}

// Terminator is an external resource handle that must be released when a run
// is abandoned (the browser automation session). Terminate should tolerate
// being called on an already released resource.
type Terminator interface {
	Terminate(ctx context.Context) error
}

// SessionProvider is a resource shared by runs that keeps one session per
// run. Session returns the handle releasing only that run's session.
type SessionProvider interface {
	Session(runID string) Terminator
}

// Terminators releases several handles in order and joins their errors.
type Terminators []Terminator

// Terminate implements Terminator.
func (ts Terminators) Terminate(ctx context.Context) error {
	var errs []error
	for _, t := range ts {
		if err := t.Terminate(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
