package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// RouteFinish is the decision value that ends the run.
const RouteFinish = "FINISH"

// HandoffPrefix starts a coordinator reply that passes the request on to the
// team instead of answering it.
const HandoffPrefix = "handoff"

// IsHandoff reports whether a coordinator reply is a handoff. The prefix must
// start the reply; leading whitespace makes it a direct answer.
func IsHandoff(content string) bool { return strings.HasPrefix(content, HandoffPrefix) }

// Decision is the supervisor's routing choice.
type Decision struct {
	Next string `json:"next"`
}

// Terminate reports whether the decision ends the run.
func (d Decision) Terminate() bool { return d.Next == RouteFinish }

// Validate checks the decision against the run's team members.
func (d Decision) Validate(teamMembers []string) error {
	if d.Next == RouteFinish || slices.Contains(teamMembers, d.Next) {
		return nil
	}
	return &RouteError{Route: d.Next, Allowed: append(slices.Clone(teamMembers), RouteFinish)}
}

// ParseDecision decodes a structured decision and validates it. Models often
// wrap JSON in markdown fences, which are stripped first.
func ParseDecision(raw string, teamMembers []string) (Decision, error) {
	var d Decision
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &d); err != nil {
		return Decision{}, fmt.Errorf("decode decision: %w", err)
	}
	if err := d.Validate(teamMembers); err != nil {
		return Decision{}, err
	}
	return d, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
