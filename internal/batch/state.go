package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// StateFile is the name of the incremental render state kept in the output
// directory.
const StateFile = ".usediagram-state.json"

// State tracks the content hash each source had when it was last rendered,
// per output format.
type State struct {
	FileHashes  map[string]string `json:"file_hashes"`
	LastUpdated time.Time         `json:"last_updated"`
}

// LoadState reads the render state from dir. A missing file yields an
// empty state.
func LoadState(dir string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(dir, StateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &State{FileHashes: make(map[string]string)}, nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.FileHashes == nil {
		state.FileHashes = make(map[string]string)
	}
	return &state, nil
}

// Save writes the state into dir.
func (s *State) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	s.LastUpdated = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, StateFile), data, 0o644)
}

// IsChanged reports whether key's stored hash differs from contentHash.
func (s *State) IsChanged(key, contentHash string) bool {
	stored, ok := s.FileHashes[key]
	return !ok || stored != contentHash
}

func stateKey(format, relPath string) string {
	return format + ":" + relPath
}
