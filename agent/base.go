package agent

// BaseAgent carries the identity shared by all agent implementations.
type BaseAgent struct {
	name        string
	description string
}

// NewBaseAgent creates a BaseAgent.
func NewBaseAgent(name, description string) BaseAgent {
	return BaseAgent{name: name, description: description}
}

// Name returns the agent name. It doubles as the graph node name.
func (b BaseAgent) Name() string { return b.name }

// Description returns a human readable description.
func (b BaseAgent) Description() string { return b.description }
