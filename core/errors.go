package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyInput is returned when a run is started without messages.
	ErrEmptyInput = errors.New("input messages must not be empty")

	// ErrUnknownRoute is the sentinel for routing decisions outside the
	// closed destination set.
	ErrUnknownRoute = errors.New("unknown route")

	// ErrStepLimit is returned when an opt-in step bound is exceeded.
	ErrStepLimit = errors.New("step limit exceeded")

	// ErrModelCallLimit is returned when a run has used up its model calls.
	ErrModelCallLimit = errors.New("model call limit exceeded")
)

// RouteError reports a decision whose destination is neither a team member
// nor the terminate literal.
type RouteError struct {
	Route   string
	Allowed []string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("unknown route %q (allowed: %s)", e.Route, strings.Join(e.Allowed, ", "))
}

// Unwrap allows errors.Is(err, ErrUnknownRoute).
func (e *RouteError) Unwrap() error { return ErrUnknownRoute }

// AgentError wraps a failure raised by a collaborator (worker, participant or
// decider) while executing a node.
type AgentError struct {
	Agent string
	Err   error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %s: %v", e.Agent, e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }
