// Package storage keeps a local copy of conversations so the previous
// chat is visible immediately at startup and readable while the backend
// is unreachable. The backend remains the source of truth: the cache is
// overwritten after every successful load and never synced back.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"aitui/api"
)

// Cache is a sqlite-backed conversation cache in the data directory.
type Cache struct {
	db *sql.DB
}

// NewCache opens (creating if needed) the cache database.
func NewCache(dataDir string) (*Cache, error) {
	dbPath := filepath.Join(dataDir, "cache.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cache := &Cache{db: db}

	if err := cache.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cache, nil
}

func (c *Cache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		position INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER NOT NULL,
		session_id INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (session_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
	`

	_, err := c.db.Exec(schema)
	return err
}

// SaveSessions replaces the cached session list. Server order is kept
// via the position column.
func (c *Cache) SaveSessions(sessions []api.Session) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions`); err != nil {
		return err
	}

	for i, s := range sessions {
		_, err := tx.Exec(
			`INSERT INTO sessions (id, title, created_at, position) VALUES (?, ?, ?, ?)`,
			s.ID, s.Title, s.CreatedAt, i,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Sessions returns the cached session list in server order.
func (c *Cache) Sessions() ([]api.Session, error) {
	rows, err := c.db.Query(`SELECT id, title, created_at FROM sessions ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []api.Session
	for rows.Next() {
		var s api.Session
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt); err != nil {
			continue
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// SaveMessages replaces the cached log of one conversation.
func (c *Cache) SaveMessages(sessionID int64, messages []api.Message) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return err
	}

	for i, m := range messages {
		_, err := tx.Exec(
			`INSERT INTO messages (id, session_id, role, content, status, created_at, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, sessionID, m.Role, m.Content, m.Status, m.CreatedAt, i,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Messages returns a conversation's cached log in server order.
func (c *Cache) Messages(sessionID int64) ([]api.Message, error) {
	rows, err := c.db.Query(
		`SELECT id, role, content, status, created_at FROM messages
		 WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []api.Message
	for rows.Next() {
		var m api.Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.Status, &m.CreatedAt); err != nil {
			continue
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// DeleteSession drops a conversation and its messages from the cache.
func (c *Cache) DeleteSession(sessionID int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return err
	}

	return tx.Commit()
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// SaveCurrentSessionID records the last-open conversation.
func SaveCurrentSessionID(dataDir string, id int64) error {
	path := filepath.Join(dataDir, "current_session.id")
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", id)), 0600)
}

// LoadCurrentSessionID returns the last-open conversation id, or 0 when
// none has been recorded.
func LoadCurrentSessionID(dataDir string) int64 {
	path := filepath.Join(dataDir, "current_session.id")
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}

	var id int64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(data)), "%d", &id); err != nil {
		return 0
	}
	return id
}
