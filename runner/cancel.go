package runner

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/logging"
	"github.com/hupe1980/teamflow/metrics"
)

// cancellationHandler releases the run's browser session when a run is
// abandoned. Release happens at most once per run and never fails the run:
// termination errors are logged.
type cancellationHandler struct {
	once    sync.Once
	browser core.Terminator
	timeout time.Duration
	logger  logging.Logger
	metrics *metrics.Recorder
}

func newCancellationHandler(browser core.Terminator, timeout time.Duration, logger logging.Logger, m *metrics.Recorder) *cancellationHandler {
	return &cancellationHandler{browser: browser, timeout: timeout, logger: logger, metrics: m}
}

// release terminates the browser session. ctx is the cancelled run context;
// termination runs detached from it, bounded by the handler timeout.
func (h *cancellationHandler) release(ctx context.Context) {
	h.once.Do(func() {
		if h.browser == nil {
			return
		}

		tctx := context.WithoutCancel(ctx)
		if h.timeout > 0 {
			var cancel context.CancelFunc
			tctx, cancel = context.WithTimeout(tctx, h.timeout)
			defer cancel()
		}

		if err := h.browser.Terminate(tctx); err != nil {
			h.logger.Warn("runner.cancel.terminate_failed", "error", err.Error())
			h.metrics.BrowserTermination(metrics.TerminationFailed)
			return
		}

		h.logger.Info("runner.cancel.browser_terminated")
		h.metrics.BrowserTermination(metrics.TerminationOK)
	})
}
