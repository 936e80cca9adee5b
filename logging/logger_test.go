package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"verbose", LogLevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTeamLogger_Attributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	l.WithComponent("runner").WithRun("run-1").Info("runner.run.start", "team_size", 4)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "runner.run.start", entry["msg"])
	assert.Equal(t, "runner", entry["component"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.EqualValues(t, 4, entry["team_size"])
}

func TestTeamLogger_WithLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "text", Output: &buf})

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	ForLevel(l, LogLevelDebug).Debug("visible")
	assert.True(t, strings.Contains(buf.String(), "visible"))

	// the original logger keeps its level
	buf.Reset()
	l.Debug("still hidden")
	assert.Empty(t, buf.String())
}

func TestForLevel_PassThrough(t *testing.T) {
	var l Logger = NoOpLogger{}
	assert.Equal(t, l, ForLevel(l, LogLevelDebug))
}

func TestForRun(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	ForRun(l, "run-7").Info("graph.run.complete")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-7", entry["run_id"])

	var noop Logger = NoOpLogger{}
	assert.Equal(t, noop, ForRun(noop, "run-7"))
}
