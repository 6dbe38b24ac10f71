package memory

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"ardomis/internal/store"
)

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := store.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAddSkipsEmptyAndRepeats(t *testing.T) {
	ctx := context.Background()
	h, err := Open(ctx, openDB(t, ":memory:"), 24, 800)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	steps := []struct {
		role Role
		text string
	}{
		{RoleUser, "hello"},
		{RoleUser, "  hello  "},
		{RoleUser, "   "},
		{RoleAssistant, "hey"},
		{RoleUser, "hello"},
	}
	for _, s := range steps {
		if err := h.add(ctx, s.role, s.text); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	want := []Message{
		{RoleUser, "hello"},
		{RoleAssistant, "hey"},
		{RoleUser, "hello"},
	}
	got := h.Messages()
	if len(got) != len(want) {
		t.Fatalf("messages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("messages[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if h.LastUser() != "hello" {
		t.Errorf("LastUser = %q", h.LastUser())
	}
}

func TestWindowAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.db")
	db := openDB(t, path)

	h, err := Open(ctx, db, 4, 800)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := h.AddUser(ctx, fmt.Sprintf("msg %d", i)); err != nil {
			t.Fatalf("AddUser: %v", err)
		}
	}
	if n := len(h.Messages()); n != 4 {
		t.Fatalf("window = %d, want 4", n)
	}

	reloaded, err := Open(ctx, db, 4, 800)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := reloaded.Messages()
	if len(got) != 4 || got[0].Content != "msg 6" || got[3].Content != "msg 9" {
		t.Errorf("reloaded = %v, want msg 6..9", got)
	}
}

func TestPersistedRowsBounded(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, ":memory:")

	h, err := Open(ctx, db, 24, 10) // raised to the floor of 50
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 70; i++ {
		if err := h.AddUser(ctx, fmt.Sprintf("line %d", i)); err != nil {
			t.Fatalf("AddUser: %v", err)
		}
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != minPersistRows {
		t.Errorf("persisted rows = %d, want %d", n, minPersistRows)
	}
}
