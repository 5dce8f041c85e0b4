// Package session remembers the last selected organization between runs.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State is the persisted selection.
type State struct {
	Organization string    `json:"organization"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Load reads the state from a JSON file. Returns a zero state if the file doesn't exist.
func Load(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", filePath, err)
	}
	return &state, nil
}

// Save writes the state to a JSON file, creating the parent directory.
func Save(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// Resolve picks the organization to start with: the remembered one if valid accepts it,
// otherwise fallback.
func Resolve(state *State, valid func(string) bool, fallback string) string {
	if state != nil && state.Organization != "" && valid(state.Organization) {
		return state.Organization
	}
	return fallback
}
