// Package toolset declares the concrete tools exposed to agents and binds
// them to the collaborator clients.
//
// Three packs mirror the backend split: task tools (create_task, list_tasks,
// update_task), search tools (search_helpers), and profile tools
// (get_profile, update_profile). Each tool carries inline JSON Schema
// documents for its input and output; the registry validates input against
// them before the handler runs, so handlers can trust the shape of their
// arguments.
//
// RegisterAll wires every pack into a registry at process startup.
package toolset
