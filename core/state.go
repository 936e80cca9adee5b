package core

import "slices"

// Team participant names.
const (
	Researcher  = "researcher"
	Coder       = "coder"
	FileManager = "file_manager"
	Browser     = "browser"

	Supervisor  = "supervisor"
	Coordinator = "coordinator"
	Planner     = "planner"
)

// DefaultTeamMembers is the fixed worker set.
var DefaultTeamMembers = []string{Researcher, Coder, Browser, FileManager}

// MemberConfig describes a team member to the supervisor and to clients.
type MemberConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"desc" yaml:"description"`
	DescForLLM  string `json:"desc_for_llm" yaml:"desc_for_llm"`
	IsOptional  bool   `json:"is_optional" yaml:"is_optional"`
}

// SharedState is the per-run record passed between nodes. It is owned by one
// run and never shared. Messages only grow.
type SharedState struct {
	Messages             []Message
	TeamMembers          []string
	MemberConfigs        map[string]MemberConfig
	Next                 string
	DeepThinking         bool
	SearchBeforePlanning bool
}

// NewSharedState seeds a state with the input messages and the run's team.
func NewSharedState(messages []Message, teamMembers []string) *SharedState {
	return &SharedState{
		Messages:    slices.Clone(messages),
		TeamMembers: slices.Clone(teamMembers),
	}
}

// Append adds messages to the history.
func (s *SharedState) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// History returns a copy of the message history.
func (s *SharedState) History() []Message {
	return slices.Clone(s.Messages)
}

// LastUserContent returns the content of the most recent unnamed user message.
func (s *SharedState) LastUserContent() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.Role == RoleUser && m.Name == "" {
			return m.Content
		}
	}
	return ""
}
