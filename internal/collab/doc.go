// Package collab contains HTTP clients for the backend collaborators: the
// task-management, search/directory, and profile services.
//
// Every call is authenticated with the caller's own bearer token, forwarded
// unchanged from the inbound request. Responses are JSON; failures map to
// *CallError carrying the upstream status code so the tool registry can
// distinguish transient (network, 5xx) from permanent (4xx) failures.
package collab
