package market

import (
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotStore persists the last-known Conditions to disk so a
// restarted process has something to price against before its first
// oracle cycle completes. It is crash-recovery only: the in-process
// Cache stays the source of truth while the process is up, and this
// store is never read from concurrently with a live oracle keeper.
// Grounded on the teacher's display/bridge/main.go, the one place in
// the pack that calls vmihailenco/msgpack/v5's Marshal/Unmarshal
// directly rather than through an RPC codec.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore returns a store writing to path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Save encodes conditions as msgpack and writes it to a temp file
// before renaming over the destination, so a crash mid-write never
// leaves a truncated snapshot behind.
func (s *SnapshotStore) Save(cond Conditions) error {
	data, err := msgpack.Marshal(cond)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load decodes the last-saved Conditions. It returns ok=false, not an
// error, when no snapshot file exists yet (the common case on a
// process's very first run).
func (s *SnapshotStore) Load() (Conditions, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Conditions{}, false, nil
		}
		return Conditions{}, false, err
	}
	var cond Conditions
	if err := msgpack.Unmarshal(data, &cond); err != nil {
		return Conditions{}, false, err
	}
	return cond, true, nil
}
