// Package memory keeps the rolling chat history handed to the dialogue
// service and mirrors it into SQLite so context survives restarts.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ardomis/internal/store"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

const (
	DefaultWindow  = 24
	minPersistRows = 50
)

type History struct {
	db      *sql.DB
	window  int
	maxRows int
	buf     []Message
	now     func() time.Time
}

// Open loads the latest window messages from db. maxRows bounds the
// persisted table and is never below 50.
func Open(ctx context.Context, db *sql.DB, window, maxRows int) (*History, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	h := &History{
		db:      db,
		window:  window,
		maxRows: max(minPersistRows, maxRows),
		now:     time.Now,
	}

	rows, err := db.QueryContext(ctx, `SELECT role, content FROM messages ORDER BY id DESC LIMIT ?`, window)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var recent []Message
	for rows.Next() {
		var m Message
		var role string
		if err := rows.Scan(&role, &m.Content); err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		m.Role = Role(role)
		recent = append(recent, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	for i := len(recent) - 1; i >= 0; i-- {
		h.appendIfNew(recent[i])
	}
	return h, nil
}

func (h *History) AddUser(ctx context.Context, text string) error {
	return h.add(ctx, RoleUser, text)
}

func (h *History) AddAssistant(ctx context.Context, text string) error {
	return h.add(ctx, RoleAssistant, text)
}

// Messages returns a copy of the in-memory window, oldest first.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.buf))
	copy(out, h.buf)
	return out
}

// LastUser returns the most recent user turn, or "".
func (h *History) LastUser() string {
	for i := len(h.buf) - 1; i >= 0; i-- {
		if h.buf[i].Role == RoleUser {
			return h.buf[i].Content
		}
	}
	return ""
}

func (h *History) add(ctx context.Context, role Role, text string) error {
	m := Message{Role: role, Content: strings.TrimSpace(text)}
	if !h.appendIfNew(m) {
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persist message: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO messages (ts, role, content) VALUES (?, ?, ?)`,
		store.UnixSeconds(h.now()), string(m.Role), m.Content); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM messages
		WHERE id NOT IN (SELECT id FROM messages ORDER BY id DESC LIMIT ?)`, h.maxRows); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}
	return nil
}

// appendIfNew drops empty messages and exact repeats of the previous turn.
func (h *History) appendIfNew(m Message) bool {
	if m.Content == "" {
		return false
	}
	if n := len(h.buf); n > 0 && h.buf[n-1] == m {
		return false
	}
	h.buf = append(h.buf, m)
	if len(h.buf) > h.window {
		h.buf = h.buf[len(h.buf)-h.window:]
	}
	return true
}
