// Package agents contains the specialized turn handlers.
//
// The agent set is a closed enum of kinds — task, search, profile, general —
// with a dispatch table from kind to implementation. Adding an agent means
// adding a kind constant and a table entry; there is no open-ended runtime
// registration.
//
// Agents are deterministic: they parse the message for the operation and its
// parameters, issue tool calls through the invoker handed to them for the
// turn, and render the results into a response. An agent that discovers the
// request belongs to a different specialty returns a Handoff; the
// orchestrator honors at most one per turn.
//
// The General agent is the terminal fallback: it never issues tool calls and
// never hands off, so every routing path terminates.
package agents
