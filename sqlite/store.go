// Package sqlite persists the conversation log in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

var _ assistant.ConversationStore = (*Store)(nil)

const activePersonaKey = "active_persona"

// Store implements assistant.ConversationStore using SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs the schema
// migration.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("sqlite: create directories: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL UNIQUE,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			persona    TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append implements assistant.ConversationStore. Duplicate IDs are rejected.
func (s *Store) Append(ctx context.Context, msg assistant.Message) error {
	if err := assistant.ValidateMessage(msg); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (id, role, content, persona, created_at) VALUES (?, ?, ?, ?, ?)",
		msg.ID, string(msg.Role), msg.Content, string(msg.Persona),
		msg.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append: %w", err)
	}
	return nil
}

// Messages implements assistant.ConversationStore. Messages are returned in
// insertion order.
func (s *Store) Messages(ctx context.Context) ([]assistant.Message, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, role, content, persona, created_at FROM messages ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("sqlite: messages: %w", err)
	}
	defer rows.Close()

	var msgs []assistant.Message
	for rows.Next() {
		var (
			m                      assistant.Message
			role, persona, created string
		)
		if err := rows.Scan(&m.ID, &role, &m.Content, &persona, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan message: %w", err)
		}
		m.Role = assistant.Role(role)
		m.Persona = assistant.PersonaID(persona)
		m.Timestamp, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse timestamp of %s: %w", m.ID, err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: messages: %w", err)
	}
	return msgs, nil
}

// Clear deletes all messages. The active persona is kept.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return fmt.Errorf("sqlite: clear: %w", err)
	}
	return nil
}

// ActivePersona implements assistant.ConversationStore. It defaults to the
// general persona.
func (s *Store) ActivePersona(ctx context.Context) (assistant.PersonaID, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", activePersonaKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return assistant.PersonaGeneral, nil
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: active persona: %w", err)
	}
	return assistant.PersonaID(v), nil
}

// SetActivePersona implements assistant.ConversationStore.
func (s *Store) SetActivePersona(ctx context.Context, id assistant.PersonaID) error {
	if id == "" {
		return fmt.Errorf("sqlite: persona id is required: %w", assistant.ErrValidation)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		activePersonaKey, string(id),
	)
	if err != nil {
		return fmt.Errorf("sqlite: set active persona: %w", err)
	}
	return nil
}
