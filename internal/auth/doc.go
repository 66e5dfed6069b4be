// Package auth verifies caller identity and threads it through the request path.
//
// The OTP/identity provider is an external collaborator: it signs users in and
// issues HS256 bearer tokens. This package only verifies those tokens and
// carries the resulting identity — plus the raw token, which is forwarded
// unchanged to backend collaborators on every tool call.
//
// AuthContext travels via context.Context using WithAuth/FromContext, the same
// value from the HTTP middleware down through the orchestrator, agents, and
// tool registry. No layer reads ambient credentials.
package auth
