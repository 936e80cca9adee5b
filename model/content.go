package model

import "github.com/hupe1980/teamflow/core"

// Content is the model-facing form of a conversation turn.
type Content = core.Content

// Content roles understood by the provider adapters.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// TextContent builds a single-text content with the given role.
func TextContent(role, text string) Content {
	return Content{Role: role, Parts: []core.Part{core.TextPart{Text: text}}}
}

// FromMessages converts state messages into model contents. Named messages
// from other participants are prefixed with the author so the model can tell
// team members apart.
func FromMessages(msgs []core.Message) []Content {
	out := make([]Content, 0, len(msgs))
	for _, m := range msgs {
		text := m.Content
		if m.Name != "" && m.Role == core.RoleUser {
			text = "[" + m.Name + "] " + text
		}
		out = append(out, TextContent(m.Role, text))
	}
	return out
}
