package emotion

import (
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"time"
)

// Store persists State as a small JSON file.
type Store struct {
	path string
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Load reads the saved state. Missing fields take their baseline value; a
// missing or unreadable file yields the baseline.
func (st *Store) Load() *State {
	s := Baseline()

	data, err := os.ReadFile(st.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		log.Warn("Failed to read mood state, using baseline", "path", st.path, "error", err)
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			log.Warn("Corrupt mood state, using baseline", "path", st.path, "error", err)
			s = Baseline()
		}
	}

	if s.LastTS == 0 {
		s.LastTS = float64(st.now().UnixNano()) / 1e9
	}
	return &s
}

// Save writes s atomically.
func (st *Store) Save(s *State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mood state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write mood state: %w", err)
	}
	if err := os.Rename(tmp, st.path); err != nil {
		return fmt.Errorf("replace mood state: %w", err)
	}
	return nil
}
