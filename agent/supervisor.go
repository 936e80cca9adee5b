package agent

import (
	"fmt"
	"strings"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/model"
)

// ModelSupervisor is a core.Decider backed by a language model with JSON
// output. The history handed to Decide starts with the system directive;
// system messages are lifted into the request instructions.
type ModelSupervisor struct {
	llm model.Model
}

var _ core.Decider = (*ModelSupervisor)(nil)

// NewModelSupervisor creates a supervisor decider.
func NewModelSupervisor(llm model.Model) *ModelSupervisor {
	return &ModelSupervisor{llm: llm}
}

// Decide implements core.Decider.
func (s *ModelSupervisor) Decide(runCtx *core.RunContext, history []core.Message) (core.Decision, error) {
	var (
		system []string
		rest   []core.Message
	)
	for _, m := range history {
		if m.Role == core.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}

	req := model.Request{
		Instructions:   strings.Join(system, "\n\n"),
		Contents:       model.FromMessages(rest),
		ResponseFormat: model.FormatJSON,
	}

	resp, err := generate(runCtx, s.llm, req, false)
	if err != nil {
		return core.Decision{}, err
	}

	raw := resp.Content.Text()
	d, err := core.ParseDecision(raw, runCtx.TeamMembers)
	if err != nil {
		runCtx.LogWarn("supervisor.decision.invalid", "raw", raw, "error", err.Error())
		return core.Decision{}, fmt.Errorf("supervisor decision: %w", err)
	}

	runCtx.LogDebug("supervisor.decision", "next", d.Next)

	return d, nil
}
