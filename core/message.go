package core

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single entry of the conversation history. Values are treated as
// immutable once appended to a SharedState.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
	ID      string `json:"id,omitempty"`
}

// NewUserMessage returns a user-authored message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewSystemMessage returns a system directive message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewAgentMessage returns a message attributed to a named team participant.
// Agent output re-enters the conversation as a named user turn so the
// supervisor reads it as input rather than as its own reply.
func NewAgentMessage(name, content string) Message {
	return Message{Role: RoleUser, Content: content, Name: name}
}
