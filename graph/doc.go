// Package graph implements the routing state machine of a team.
//
//	coordinator? ──handoff──▶ planner? ──▶ supervisor ◀──▶ worker
//	     │                                    │
//	     └──direct reply──▶ end               └──FINISH──▶ end
//
// Every node entry advances the run's step counter and is bracketed by
// node-start / node-end raw events.
package graph
