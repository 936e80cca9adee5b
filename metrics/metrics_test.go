package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.RunStarted()
	r.RunStarted()
	r.RunFinished(OutcomeCompleted)
	r.Event("message")
	r.Event("message")
	r.NodeTransition("supervisor")
	r.BrowserTermination(TerminationOK)
	r.ToolDuration("browser", 250*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.activeRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues(OutcomeCompleted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.events.WithLabelValues("message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.nodes.WithLabelValues("supervisor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.terminations.WithLabelValues(TerminationOK)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.toolDuration))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RunStarted()
		r.RunFinished(OutcomeFailed)
		r.Event("message")
		r.NodeTransition("coder")
		r.BrowserTermination(TerminationFailed)
		r.ToolDuration("x", time.Second)
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.RunStarted()
	r.RunFinished(OutcomeCancelled)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `teamflow_runs_total{outcome="cancelled"} 1`), body)
}
