// Package runner executes team runs.
//
// A run is two goroutines joined by an unbuffered channel: the graph
// goroutine drives the routing state machine and emits raw events; the
// session goroutine translates them into protocol events and hands them to
// the caller. Nothing is produced ahead of the consumer, so a consumer that
// stops reading also stops the run once it cancels.
//
// When a run is cancelled (through its context or Runner.Cancel) the browser
// session is terminated once, and then the context error is delivered
// unchanged on the error channel. A run that completes ends with
// end_of_workflow (when the workflow was started by the planner) and
// final_session_state.
package runner
