// Package router decides which agent handles a turn.
//
// Classification is deterministic keyword scoring: the same message and the
// same prior thread state always produce the same decision. There is no
// randomness and no model call; this is the routing layer the original
// system fell back to when its classifier was unavailable, promoted to the
// primary mechanism.
//
// Two policies sit on top of the raw scores:
//
//   - Stickiness: short follow-up-shaped messages with no strong intent
//     signal stay with the thread's last agent.
//   - Fallback: when confidence is below the threshold the General agent is
//     selected rather than failing the turn.
package router
