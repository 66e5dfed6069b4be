// Package orchestrator drives a conversational turn end to end.
//
// A turn moves through a fixed state machine: received, routed, executing,
// responded, then persisted — or failed from any state. The orchestrator is
// the only component that writes to the thread store; agents and tools only
// read thread history and call collaborators.
//
// Turns on the same thread are serialized with a per-thread lock so the
// append-only message log never interleaves. Turns on different threads run
// concurrently. Every turn is persisted, including failed ones: a failed turn
// records the user's message and an error marker so the thread reflects what
// actually happened.
package orchestrator
