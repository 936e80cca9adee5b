package agent

import (
	"time"

	"github.com/hupe1980/teamflow/core"
	"github.com/hupe1980/teamflow/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
type Provider interface {
	Instruction(runCtx *core.RunContext, state *core.SharedState) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(runCtx *core.RunContext, state *core.SharedState) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(runCtx *core.RunContext, state *core.SharedState) (string, error) {
	return f(runCtx, state)
}

// Instruction represents either a static instruction string or a dynamic provider.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(*core.RunContext, *core.SharedState) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// NewInstructionFromTemplate creates an Instruction rendered against the run
// state on every call. See TemplateData for the available fields.
func NewInstructionFromTemplate(tmpl string) Instruction {
	return NewInstructionFromFunc(func(_ *core.RunContext, state *core.SharedState) (string, error) {
		return util.RenderTemplate(tmpl, TemplateData(state))
	})
}

// TemplateData exposes the run state to prompt templates.
func TemplateData(state *core.SharedState) map[string]any {
	members := make([]core.MemberConfig, 0, len(state.TeamMembers))
	for _, name := range state.TeamMembers {
		cfg, ok := state.MemberConfigs[name]
		if !ok {
			cfg = core.MemberConfig{Name: name}
		}
		members = append(members, cfg)
	}
	return map[string]any{
		"TeamMembers":          state.TeamMembers,
		"Members":              members,
		"DeepThinking":         state.DeepThinking,
		"SearchBeforePlanning": state.SearchBeforePlanning,
		"CurrentTime":          time.Now().Format(time.RFC1123),
	}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(runCtx *core.RunContext, state *core.SharedState) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(runCtx, state)
	}
	return i.text, nil
}
