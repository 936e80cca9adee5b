package core

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/hupe1980/teamflow/logging"
)

// RunContext carries execution state & helpers for one run. It aggregates:
//   - The ambient cancellation Context
//   - The run identifier and resolved team members
//   - The node currently executing and the shared step counter
//   - The raw event emission channel
//   - The model call budget
//   - The run's logger
//
// ForNode derives a child for a node; children share the step counter,
// model call budget and emission channel with their parent. Log entries of a
// node context carry the node and the current step.
type RunContext struct {
	Context     context.Context
	RunID       string
	TeamMembers []string
	Node        string
	Emit        chan<- Event

	steps  *atomic.Int64
	budget *modelBudget
	logger logging.Logger
}

// NewRunContext constructs a RunContext positioned before the first node.
func NewRunContext(
	ctx context.Context,
	runID string,
	teamMembers []string,
	emit chan<- Event,
	maxModelCalls int,
	logger logging.Logger,
) *RunContext {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &RunContext{
		Context:     ctx,
		RunID:       runID,
		TeamMembers: slices.Clone(teamMembers),
		Emit:        emit,
		steps:       new(atomic.Int64),
		budget:      &modelBudget{max: int64(maxModelCalls)},
		logger:      logger,
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// Step returns the current step number.
func (rc *RunContext) Step() int { return int(rc.steps.Load()) }

// NextStep increments the step counter on a node transition and returns the new value.
func (rc *RunContext) NextStep() int { return int(rc.steps.Add(1)) }

// ForNode derives a context for the named node.
func (rc *RunContext) ForNode(node string) *RunContext {
	c := *rc
	c.Node = node
	return &c
}

// SpendModelCall charges one model call to the run. It fails with
// ErrModelCallLimit once the run's budget is exhausted.
func (rc *RunContext) SpendModelCall() error { return rc.budget.spend() }

// ModelCalls returns the number of model calls charged to the run so far.
func (rc *RunContext) ModelCalls() int { return int(rc.budget.used.Load()) }

// Logger returns the run's logger.
func (rc *RunContext) Logger() logging.Logger { return rc.logger }

func (rc *RunContext) logArgs(args []any) []any {
	if rc.Node == "" {
		return args
	}
	return append([]any{"node", rc.Node, "step", rc.Step()}, args...)
}

// LogDebug logs a debug message scoped to the current node.
func (rc *RunContext) LogDebug(msg string, args ...any) { rc.logger.Debug(msg, rc.logArgs(args)...) }

// LogInfo logs an info message scoped to the current node.
func (rc *RunContext) LogInfo(msg string, args ...any) { rc.logger.Info(msg, rc.logArgs(args)...) }

// LogWarn logs a warning scoped to the current node.
func (rc *RunContext) LogWarn(msg string, args ...any) { rc.logger.Warn(msg, rc.logArgs(args)...) }

// LogError logs an error scoped to the current node.
func (rc *RunContext) LogError(msg string, args ...any) { rc.logger.Error(msg, rc.logArgs(args)...) }

// EmitEvent sends a raw event, filling in the owning node and step when
// unset. It blocks until the event is consumed or the context is cancelled.
// A RunContext without an emission channel drops events.
func (rc *RunContext) EmitEvent(ev Event) error {
	if rc.Emit == nil {
		return rc.Context.Err()
	}
	if ev.Node == "" {
		ev.Node = rc.Node
	}
	if ev.Step == 0 {
		ev.Step = rc.Step()
	}

	select {
	case <-rc.Context.Done():
		return rc.Context.Err()
	case rc.Emit <- ev:
	}

	return nil
}
