package runner

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/logging"
	"github.com/hupe1980/teamflow/metrics"
	"github.com/hupe1980/teamflow/protocol"
	"github.com/hupe1980/teamflow/translator"
)

// Graph is the routing state machine driven by a run.
type Graph interface {
	Run(runCtx *core.RunContext, state *core.SharedState) (*core.SharedState, error)
}

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// TeamMembers is the process-wide default worker set.
	TeamMembers []string
	// MemberConfigs describes the workers to the supervisor and planner.
	MemberConfigs map[string]core.MemberConfig
	// EventBufferSize sets channel buffering for external events. 0 keeps
	// the stream strictly pull-based.
	EventBufferSize int
	// MaxModelCalls limits the number of model calls per run. 0 is unlimited.
	MaxModelCalls int
	// Browser is the default browser session released on cancellation.
	Browser core.Terminator
	// BrowserSession binds the browser session of a single run. It takes
	// precedence over Browser.
	BrowserSession func(runID string) core.Terminator
	// TerminateTimeout bounds the browser release on cancellation.
	TerminateTimeout time.Duration
	// Logging services.
	Logger logging.Logger
	// Metrics is optional.
	Metrics *metrics.Recorder
}

// RunOptions are per-run overrides.
type RunOptions struct {
	// Debug switches the run's logger to debug level.
	Debug bool
	// DeepThinking asks participants to use their reasoning model.
	DeepThinking bool
	// SearchBeforePlanning asks the planner to search before planning.
	SearchBeforePlanning bool
	// TeamMembers overrides the default worker set for this run.
	TeamMembers []string
	// Browser overrides the browser session released on cancellation.
	Browser core.Terminator
}

// Runner drives runs of a Graph: it creates the run context, streams the
// translated events, releases the browser session when a run is abandoned
// and delivers the terminal error. Public methods are safe for concurrent use.
type Runner struct {
	graph Graph

	teamMembers      []string
	memberConfigs    map[string]core.MemberConfig
	eventBufferSize  int
	maxModelCalls    int
	browser          core.Terminator
	browserSession   func(runID string) core.Terminator
	terminateTimeout time.Duration
	logger           logging.Logger
	metrics          *metrics.Recorder

	activeRuns map[string]context.CancelFunc
	mu         sync.Mutex
}

// New constructs a Runner with optional overrides.
func New(graph Graph, optFns ...func(o *Options)) *Runner {
	opts := Options{
		TeamMembers:      core.DefaultTeamMembers,
		TerminateTimeout: 5 * time.Second,
		Logger:           logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Runner{
		graph:            graph,
		teamMembers:      slices.Clone(opts.TeamMembers),
		memberConfigs:    opts.MemberConfigs,
		eventBufferSize:  opts.EventBufferSize,
		maxModelCalls:    opts.MaxModelCalls,
		browser:          opts.Browser,
		browserSession:   opts.BrowserSession,
		terminateTimeout: opts.TerminateTimeout,
		logger:           opts.Logger,
		metrics:          opts.Metrics,
		activeRuns:       make(map[string]context.CancelFunc),
	}
}

// Run starts an asynchronous run over messages. It returns the run id, the
// external event stream and a channel carrying at most one terminal error.
// Both channels are closed when the run ends. Empty input is rejected
// synchronously with core.ErrEmptyInput.
func (r *Runner) Run(
	ctx context.Context,
	messages []core.Message,
	optFns ...func(o *RunOptions),
) (string, <-chan protocol.Event, <-chan error, error) {
	if len(messages) == 0 {
		return "", nil, nil, core.ErrEmptyInput
	}

	ro := RunOptions{}
	for _, fn := range optFns {
		fn(&ro)
	}

	teamMembers := ro.TeamMembers
	if len(teamMembers) == 0 {
		teamMembers = r.teamMembers
	}
	runID := core.NewID()

	browser := ro.Browser
	if browser == nil && r.browserSession != nil {
		browser = r.browserSession(runID)
	}
	if browser == nil {
		browser = r.browser
	}

	logger := logging.ForRun(r.logger, runID)
	if ro.Debug {
		logger = logging.ForLevel(logger, logging.LogLevelDebug)
	}

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	rawCh := make(chan core.Event)
	eventsCh := make(chan protocol.Event, r.eventBufferSize)
	errorsCh := make(chan error, 1)
	resultCh := make(chan error, 1)

	runCtx := core.NewRunContext(ctx, runID, teamMembers, rawCh, r.maxModelCalls, logger)

	state := core.NewSharedState(messages, teamMembers)
	state.MemberConfigs = r.memberConfigs
	state.DeepThinking = ro.DeepThinking
	state.SearchBeforePlanning = ro.SearchBeforePlanning

	tr := translator.New(runID, messages, teamMembers, func(o *translator.Options) { o.Logger = logger })

	s := &session{
		runID:    runID,
		runCtx:   runCtx,
		state:    state,
		tr:       tr,
		events:   eventsCh,
		logger:   logger,
		metrics:  r.metrics,
		tools:    make(map[string]time.Time),
		canceler: newCancellationHandler(browser, r.terminateTimeout, logger, r.metrics),
	}

	logger.Info("runner.run.start", "team_members", teamMembers, "messages", len(messages))
	r.metrics.RunStarted()

	go func() {
		defer close(rawCh)

		_, err := r.graph.Run(runCtx, state)
		resultCh <- err
	}()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.activeRuns, runID)
			r.mu.Unlock()
			cancel()
			close(eventsCh)
			close(errorsCh)
		}()

		if err := s.run(rawCh, resultCh); err != nil {
			errorsCh <- err
		}
	}()

	return runID, eventsCh, errorsCh, nil
}

// Cancel cancels a running run by ID.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// TeamMembers returns the process-wide default worker set.
func (r *Runner) TeamMembers() []string { return slices.Clone(r.teamMembers) }

// session is the translation side of one run.
type session struct {
	runID    string
	runCtx   *core.RunContext
	state    *core.SharedState
	tr       *translator.Translator
	events   chan<- protocol.Event
	logger   logging.Logger
	metrics  *metrics.Recorder
	tools    map[string]time.Time
	canceler *cancellationHandler
}

// run pumps raw events until the graph finishes and returns the terminal
// error, if any.
func (s *session) run(rawCh <-chan core.Event, resultCh <-chan error) error {
	ctx := s.runCtx.Context

	if err := s.pump(rawCh); err != nil {
		return s.cancelled(ctx)
	}

	if err := <-resultCh; err != nil {
		if ctx.Err() != nil {
			return s.cancelled(ctx)
		}
		s.logger.Error("runner.run.failed", "error", err.Error())
		s.metrics.RunFinished(metrics.OutcomeFailed)
		return fmt.Errorf("team execution failed: %w", err)
	}

	msgs := protocol.FromMessages(s.state.Messages)
	if s.tr.WorkflowStarted() {
		if err := s.send(protocol.NewEndOfWorkflow(s.runID, msgs)); err != nil {
			return s.cancelled(ctx)
		}
	}
	if err := s.send(protocol.NewFinalSessionState(msgs)); err != nil {
		return s.cancelled(ctx)
	}

	s.logger.Info("runner.run.complete", "steps", s.runCtx.Step(), "messages", len(msgs))
	s.metrics.RunFinished(metrics.OutcomeCompleted)

	return nil
}

func (s *session) pump(rawCh <-chan core.Event) error {
	ctx := s.runCtx.Context
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-rawCh:
			if !ok {
				return nil
			}
			s.observe(ev)
			for _, out := range s.tr.Translate(ev) {
				if err := s.send(out); err != nil {
					return err
				}
			}
		}
	}
}

func (s *session) send(ev protocol.Event) error {
	ctx := s.runCtx.Context
	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.events <- ev:
		s.metrics.Event(string(ev.Event))
		return nil
	}
}

func (s *session) observe(ev core.Event) {
	s.logger.Debug("runner.event.raw", "kind", ev.Kind.String(), "node", ev.Node, "name", ev.Name, "step", ev.Step)

	switch ev.Kind {
	case core.EventNodeStart:
		s.metrics.NodeTransition(ev.Name)
	case core.EventToolStart:
		s.tools[ev.RunID] = ev.Timestamp
	case core.EventToolEnd:
		if start, ok := s.tools[ev.RunID]; ok {
			s.metrics.ToolDuration(ev.Name, ev.Timestamp.Sub(start))
			delete(s.tools, ev.RunID)
		}
	}
}

// cancelled releases external resources and returns the cancellation
// error unchanged.
func (s *session) cancelled(ctx context.Context) error {
	s.canceler.release(ctx)
	s.logger.Info("runner.run.cancelled", "steps", s.runCtx.Step(), "error", ctx.Err().Error())
	s.metrics.RunFinished(metrics.OutcomeCancelled)
	return ctx.Err()
}
