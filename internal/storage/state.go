package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"currency-rate-alerts/internal/detector"
)

// StateStore persists the single detector model record.
type StateStore interface {
	Load() (detector.State, error)
	Save(state detector.State) error
}

// FileStateStore keeps the model state in one JSON file.
type FileStateStore struct {
	path string
}

// NewFileStateStore wires a state store over the given path.
func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{path: path}
}

// Load reads the persisted state, or returns the bootstrap default when no
// file exists yet.
func (s *FileStateStore) Load() (detector.State, error) {
	payload, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return detector.NewState(), nil
	}
	if err != nil {
		return detector.State{}, fmt.Errorf("read state file: %w", err)
	}

	var state detector.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return detector.State{}, fmt.Errorf("parse state file: %w", err)
	}
	return state, nil
}

// Save writes the state atomically: a temp file in the same directory is
// renamed over the target, so a crash mid-write leaves the old state intact.
func (s *FileStateStore) Save(state detector.State) error {
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

var _ StateStore = (*FileStateStore)(nil)
