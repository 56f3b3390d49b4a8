package familytree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadStateFile reads a persisted view state. A missing file yields NewState.
func LoadStateFile(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewState(), nil
		}
		return State{}, fmt.Errorf("read view state: %w", err)
	}

	s, err := UnmarshalState(data)
	if err != nil {
		return State{}, fmt.Errorf("decode view state %s: %w", path, err)
	}
	return s, nil
}

// SaveStateFile writes s to path, replacing the previous file atomically
func SaveStateFile(path string, s State) error {
	data, err := MarshalState(s)
	if err != nil {
		return fmt.Errorf("encode view state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write view state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace view state: %w", err)
	}
	return nil
}
