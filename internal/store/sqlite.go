// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides thread/message persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS threads (
			id         TEXT PRIMARY KEY,
			owner_id   TEXT NOT NULL,
			last_agent TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_threads_owner
			ON threads(owner_id, updated_at DESC);

		CREATE TABLE IF NOT EXISTS messages (
			id              TEXT PRIMARY KEY,
			thread_id       TEXT NOT NULL,
			seq             INTEGER NOT NULL,
			role            TEXT NOT NULL,
			content         TEXT NOT NULL,
			agent_id        TEXT NOT NULL DEFAULT '',
			tool_calls_json TEXT,
			is_error        INTEGER NOT NULL DEFAULT 0,
			created_at      DATETIME NOT NULL,

			FOREIGN KEY (thread_id) REFERENCES threads(id),
			UNIQUE (thread_id, seq),
			CHECK (role IN ('user', 'agent', 'tool'))
		);

		CREATE INDEX IF NOT EXISTS idx_messages_thread_seq
			ON messages(thread_id, seq);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// CreateThread inserts a new thread row.
func (s *SQLiteStore) CreateThread(ctx context.Context, thread *Thread) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO threads (id, owner_id, last_agent, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		thread.ID, thread.OwnerID, thread.LastAgent, thread.CreatedAt, thread.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateThread
		}
		return fmt.Errorf("inserting thread: %w", err)
	}

	s.logger.Debug("thread created", "thread_id", thread.ID, "owner_id", thread.OwnerID)
	return nil
}

// GetThread loads a thread and its messages. Ownership is enforced here:
// a thread owned by someone else reads as ErrThreadNotFound.
func (s *SQLiteStore) GetThread(ctx context.Context, id, ownerID string) (*Thread, error) {
	thread := &Thread{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, last_agent, created_at, updated_at
		 FROM threads WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(&thread.ID, &thread.OwnerID, &thread.LastAgent, &thread.CreatedAt, &thread.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrThreadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying thread: %w", err)
	}

	msgs, err := s.loadMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	thread.Messages = msgs
	return thread, nil
}

// loadMessages returns all messages for a thread in seq order.
func (s *SQLiteStore) loadMessages(ctx context.Context, threadID string) ([]*Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, thread_id, seq, role, content, agent_id, tool_calls_json, is_error, created_at
		 FROM messages WHERE thread_id = ? ORDER BY seq ASC`,
		threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg := &Message{}
		var toolCalls sql.NullString
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &msg.Seq, &msg.Role,
			&msg.Content, &msg.AgentID, &toolCalls, &msg.IsError, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("decoding tool calls for message %s: %w", msg.ID, err)
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// AppendTurn appends one turn's messages in a single transaction and bumps
// last_agent/updated_at. Seq numbers continue from the current tail.
func (s *SQLiteStore) AppendTurn(ctx context.Context, threadID, lastAgent string, msgs []*Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Confirm the thread exists before appending
	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM threads WHERE id = ?`, threadID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrThreadNotFound
	}
	if err != nil {
		return fmt.Errorf("checking thread: %w", err)
	}

	var tail sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM messages WHERE thread_id = ?`, threadID,
	).Scan(&tail)
	if err != nil {
		return fmt.Errorf("querying tail seq: %w", err)
	}

	seq := tail.Int64 // 0 when the thread is empty
	now := time.Now().UTC()
	for _, msg := range msgs {
		seq++
		msg.ThreadID = threadID
		msg.Seq = seq
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = now
		}

		var toolCalls any
		if len(msg.ToolCalls) > 0 {
			data, err := json.Marshal(msg.ToolCalls)
			if err != nil {
				return fmt.Errorf("encoding tool calls: %w", err)
			}
			toolCalls = string(data)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (id, thread_id, seq, role, content, agent_id, tool_calls_json, is_error, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, msg.ThreadID, msg.Seq, msg.Role, msg.Content, msg.AgentID, toolCalls, msg.IsError, msg.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting message: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE threads SET last_agent = ?, updated_at = ? WHERE id = ?`,
		lastAgent, now, threadID,
	)
	if err != nil {
		return fmt.Errorf("updating thread: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing turn: %w", err)
	}

	s.logger.Debug("turn appended",
		"thread_id", threadID,
		"last_agent", lastAgent,
		"message_count", len(msgs))
	return nil
}

// ListThreads returns the owner's threads, most recently updated first.
func (s *SQLiteStore) ListThreads(ctx context.Context, ownerID string, limit int) ([]*Thread, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, last_agent, created_at, updated_at
		 FROM threads WHERE owner_id = ?
		 ORDER BY updated_at DESC LIMIT ?`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying threads: %w", err)
	}
	defer rows.Close()

	var threads []*Thread
	for rows.Next() {
		t := &Thread{}
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.LastAgent, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning thread: %w", err)
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
