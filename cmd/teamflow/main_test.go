package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teamflow/config"
	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/logging"
	"github.com/hupe1980/teamflow/protocol"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TEAMFLOW_LLM_PROVIDER", config.ProviderMock)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--env-file", "",
		"--log-level", "error",
	}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestRunCmd_Text(t *testing.T) {
	out, err := execute(t, "run", "-o", "text", "tell", "me", "something")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Research the topic.")
	assert.Contains(t, out, "Nothing to report in offline mode.")
	assert.NotContains(t, out, "handoff_to_planner")
}

func TestRunCmd_Events(t *testing.T) {
	out, err := execute(t, "run", "hello")
	require.NoError(t, err)

	var types []string
	sc := bufio.NewScanner(bytes.NewBufferString(out))
	for sc.Scan() {
		var ev struct {
			Event string `json:"event"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		types = append(types, ev.Event)
	}

	require.NotEmpty(t, types)
	assert.Contains(t, types, string(protocol.StartOfWorkflow))
	assert.Equal(t, string(protocol.FinalSessionState), types[len(types)-1])
	assert.Contains(t, types, string(protocol.EndOfWorkflow))
}

func TestRunCmd_InvalidOutput(t *testing.T) {
	_, err := execute(t, "run", "-o", "xml", "hello")
	require.Error(t, err)
}

func TestRunCmd_RequiresMessage(t *testing.T) {
	_, err := execute(t, "run")
	require.Error(t, err)
}

func TestTeamCmd(t *testing.T) {
	out, err := execute(t, "team")
	require.NoError(t, err)
	assert.Contains(t, out, core.Researcher)
	assert.Contains(t, out, core.FileManager)
	assert.NotContains(t, out, core.Browser)
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "team")
	require.Error(t, err)
}

func TestBuildTeam_AllWorkers(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = config.ProviderMock
	cfg.Team.BrowserEndpoint = "http://localhost:9999"
	cfg.Team.Workspace = t.TempDir()
	cfg.Team.CodeExecution = true

	tm, err := buildTeam(cfg, logging.NoOpLogger{})
	require.NoError(t, err)
	assert.Equal(t, core.DefaultTeamMembers, tm.members)
	assert.Len(t, tm.configs, len(core.DefaultTeamMembers))
}

func TestBuildModels_Unsupported(t *testing.T) {
	_, err := buildModels(config.LLMConfig{Provider: "llama"})
	require.Error(t, err)
}
