package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/logging"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "teamflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
llm:
  provider: anthropic
  model: claude-sonnet
team:
  members: [researcher, coder]
  planner: false
runner:
  event_buffer_size: 8
  terminate_timeout: 2s
log:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "claude-sonnet", cfg.LLM.Model)
	assert.Equal(t, []string{core.Researcher, core.Coder}, cfg.Team.Members)
	assert.False(t, cfg.Team.Planner)
	assert.True(t, cfg.Team.Coordinator)
	assert.Equal(t, 8, cfg.Runner.EventBufferSize)
	assert.Equal(t, 2*time.Second, cfg.Runner.TerminateTimeout)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Len(t, cfg.Team.MemberConfigs, 4)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "llm:\n  model: from-file\n")
	t.Setenv("TEAMFLOW_LLM_MODEL", "from-env")
	t.Setenv("TEAMFLOW_TEAM_MEMBERS", "coder,file_manager")
	t.Setenv("TEAMFLOW_RUNNER_TERMINATE_TIMEOUT", "750ms")
	t.Setenv("TEAMFLOW_TEAM_BROWSER_ENDPOINT", "http://browser:9000")
	t.Setenv("TEAMFLOW_TEAM_CODE_EXECUTION", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://browser:9000", cfg.Team.BrowserEndpoint)
	assert.True(t, cfg.Team.CodeExecution)
	assert.Equal(t, time.Minute, cfg.Team.CodeTimeout)

	assert.Equal(t, "from-env", cfg.LLM.Model)
	assert.Equal(t, []string{core.Coder, core.FileManager}, cfg.Team.Members)
	assert.Equal(t, 750*time.Millisecond, cfg.Runner.TerminateTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown provider", "llm:\n  provider: gemini\n"},
		{"reserved member", "team:\n  members: [supervisor]\n"},
		{"unknown member", "team:\n  members: [painter]\n"},
		{"duplicate member", "team:\n  members: [coder, coder]\n"},
		{"empty team", "team:\n  members: []\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"negative limit", "runner:\n  max_steps: -1\n"},
		{"bad yaml", "llm: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestMemberConfigMap(t *testing.T) {
	m := Default().MemberConfigMap()
	require.Contains(t, m, core.Browser)
	assert.True(t, m[core.Browser].IsOptional)
	assert.False(t, m[core.Coder].IsOptional)
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "warn"
	l, err := cfg.Logger()
	require.NoError(t, err)
	assert.Equal(t, logging.LogLevelWarn, l.Level())
}
