// Package teamflow provides a high-level façade over the graph and runner
// packages for building supervisor-routed AI teams. Most applications:
//  1. Create the supervisor decider and the workers (see package agent)
//  2. Build a TeamFlow via New()
//  3. Stream runs (Stream) or collect them (RunSync)
//
// Defaults are safe for local development: a no-op logger, no metrics and an
// unbounded step count.
package teamflow

import (
	"context"
	"time"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/graph"
	"github.com/hupe1980/teamflow/logging"
	"github.com/hupe1980/teamflow/metrics"
	"github.com/hupe1980/teamflow/protocol"
	"github.com/hupe1980/teamflow/runner"
)

// Options configures the TeamFlow instance.
type Options struct {
	// Coordinator and Planner form the optional preamble.
	Coordinator core.Agent
	Planner     core.Agent

	// SupervisorDirective overrides graph.DefaultSupervisorDirective.
	SupervisorDirective string

	// MaxSteps bounds node transitions per run. 0 is unlimited.
	MaxSteps int

	// TeamMembers is the default worker set. Defaults to all workers.
	TeamMembers   []string
	MemberConfigs map[string]core.MemberConfig

	EventBufferSize int
	MaxModelCalls   int

	// Browser is released when a run is cancelled. When nil, the cancelled
	// run's sessions of the workers' tools (agents exposing Sessions) are
	// released instead.
	Browser core.Terminator
	// TerminateTimeout bounds the browser release. 0 keeps the runner default.
	TerminateTimeout time.Duration

	Logger  logging.Logger
	Metrics *metrics.Recorder
}

// TeamFlow is the high-level façade aggregating the graph and its runner.
type TeamFlow struct {
	graph  *graph.Graph
	runner *runner.Runner
}

type sessionSource interface {
	Sessions() []core.SessionProvider
}

// New creates a TeamFlow over supervisor and workers.
func New(supervisor core.Decider, workers []core.Agent, optFns ...func(o *Options)) (*TeamFlow, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	g, err := graph.New(supervisor, workers, func(o *graph.Options) {
		o.Coordinator = opts.Coordinator
		o.Planner = opts.Planner
		o.MaxSteps = opts.MaxSteps
		if opts.SupervisorDirective != "" {
			o.SupervisorDirective = opts.SupervisorDirective
		}
	})
	if err != nil {
		return nil, err
	}

	teamMembers := opts.TeamMembers
	if len(teamMembers) == 0 {
		teamMembers = g.Workers()
	}

	var providers []core.SessionProvider
	for _, w := range workers {
		if src, ok := w.(sessionSource); ok {
			providers = append(providers, src.Sessions()...)
		}
	}

	r := runner.New(g, func(o *runner.Options) {
		o.TeamMembers = teamMembers
		o.MemberConfigs = opts.MemberConfigs
		o.EventBufferSize = opts.EventBufferSize
		o.MaxModelCalls = opts.MaxModelCalls
		o.Browser = opts.Browser
		if opts.Browser == nil && len(providers) > 0 {
			o.BrowserSession = func(runID string) core.Terminator {
				ts := make(core.Terminators, len(providers))
				for i, p := range providers {
					ts[i] = p.Session(runID)
				}
				return ts
			}
		}
		if opts.TerminateTimeout > 0 {
			o.TerminateTimeout = opts.TerminateTimeout
		}
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	return &TeamFlow{graph: g, runner: r}, nil
}

// Runner returns the underlying runner.
func (t *TeamFlow) Runner() *runner.Runner { return t.runner }

// TeamMembers returns the default worker set.
func (t *TeamFlow) TeamMembers() []string { return t.runner.TeamMembers() }

// Stream starts an asynchronous run returning the event & error channels.
func (t *TeamFlow) Stream(
	ctx context.Context,
	messages []core.Message,
	optFns ...func(o *runner.RunOptions),
) (string, <-chan protocol.Event, <-chan error, error) {
	return t.runner.Run(ctx, messages, optFns...)
}

// Cancel cancels a run by id.
func (t *TeamFlow) Cancel(runID string) error { return t.runner.Cancel(runID) }

// RunSync is a synchronous helper that drains the run's channels and returns
// every event together with the terminal error.
func (t *TeamFlow) RunSync(
	ctx context.Context,
	messages []core.Message,
	optFns ...func(o *runner.RunOptions),
) (string, []protocol.Event, error) {
	runID, eventsCh, errorsCh, err := t.runner.Run(ctx, messages, optFns...)
	if err != nil {
		return "", nil, err
	}

	var events []protocol.Event
	for ev := range eventsCh {
		events = append(events, ev)
	}

	return runID, events, <-errorsCh
}

// FinalMessages extracts the conversation from a final_session_state event.
func FinalMessages(events []protocol.Event) ([]protocol.Message, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if data, ok := events[i].Data.(protocol.SessionStateData); ok {
			return data.Messages, true
		}
	}
	return nil, false
}
