// Package sqlite persists the room log in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/clubchat/clubchat-server/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	user    TEXT NOT NULL,
	text    TEXT NOT NULL,
	color   TEXT NOT NULL,
	avatar  TEXT NOT NULL,
	sent_at INTEGER NOT NULL
);`

// Store holds the room log in a messages table. Save replaces the table
// contents, matching the log-replacement persistence contract.
type Store struct {
	db    *sql.DB
	limit int
}

// New opens (creating if needed) the database at dbPath.
func New(dbPath string, limit int) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, limit: limit}, nil
}

// Load returns the persisted log in insertion order.
func (s *Store) Load(ctx context.Context) ([]core.Message, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user, text, color, avatar, sent_at FROM messages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.Message
	for rows.Next() {
		var m core.Message
		var sentAt int64
		if err := rows.Scan(&m.User, &m.Text, &m.Color, &m.Avatar, &sentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.SentAt = time.UnixMilli(sentAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Save replaces the table with the newest entries up to the cap.
func (s *Store) Save(ctx context.Context, messages []core.Message) error {
	if s.limit > 0 && len(messages) > s.limit {
		messages = messages[len(messages)-s.limit:]
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO messages (user, text, color, avatar, sent_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range messages {
		if _, err := stmt.ExecContext(ctx, m.User, m.Text, m.Color, m.Avatar, m.SentAt.UnixMilli()); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
