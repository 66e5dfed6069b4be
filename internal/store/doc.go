// Package store provides owner-scoped conversation thread persistence.
//
// # Architecture
//
// The Store interface is the only write path for threads: the orchestrator
// appends one completed turn at a time and nothing else mutates thread state.
// Two implementations are provided:
//
//   - SQLiteStore: production storage using modernc.org/sqlite
//   - MemoryStore: in-memory storage for tests and ephemeral deployments
//
// # Data Models
//
//   - Thread: an owner-scoped conversation with an append-only message log
//     and a sticky last_agent used by the intent router
//   - Message: a single user/agent/tool entry, ordered by a per-thread
//     sequence number
//   - ToolCall: a tool invocation recorded on a message; persisted tool
//     calls always carry a terminal status
//
// # Ownership
//
// GetThread enforces ownership: requesting a thread that exists but belongs
// to a different owner returns ErrThreadNotFound, indistinguishable from a
// missing thread. Callers never see foreign threads.
//
// # SQLite Configuration
//
// The SQLite store uses WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Turn appends run in a single transaction so a thread never records a
// partial turn.
//
// # Error Handling
//
//   - ErrThreadNotFound: thread absent or owned by someone else
//   - ErrDuplicateThread: thread id already exists
//
// All methods accept context.Context for cancellation support.
package store
