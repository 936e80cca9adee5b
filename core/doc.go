// Package core provides the foundational domain types, interfaces and execution
// contexts used by teamflow. It defines the core abstractions for:
//
//   - Messages and the append-only SharedState of a run
//   - Agents (workers and preamble participants) and the supervisor Decider
//   - Decisions and their validation against the closed routing set
//   - Raw events emitted while a run executes (node, model and tool lifecycle)
//   - RunContext / ToolContext (scoped execution & tool sandboxing)
//
// Routing, translation and run orchestration live in the graph, translator and
// runner packages; core keeps only the contracts they share.
package core
