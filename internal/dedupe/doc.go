// Package dedupe guards the gateway against duplicate turn delivery.
//
// Chat clients retry on timeouts, so the same message can arrive twice in
// quick succession. The guard keys each delivery on the caller, the thread,
// and the message text; a repeat within the TTL is dropped before it reaches
// the orchestrator, so the thread log never records the turn twice.
package dedupe
