// Package agent contains the language-model backed participants of a team:
//
//   - ModelAgent: workers and preamble participants (coordinator, planner).
//     Streams its model output and runs a tool-calling loop.
//   - ModelSupervisor: the routing Decider, answering with {"next": ...}.
//   - Instruction: static or state-rendered prompt text.
//
// Agents report their activity as raw core.Events through the RunContext
// they are invoked with; they never touch the shared state directly.
package agent
