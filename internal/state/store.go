package state

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/dsync/internal/fsops"
)

// Store provides an interface for persisting the hash state.
type Store interface {
	// Load returns the saved state, or an empty one if none was saved or the
	// saved one is unreadable or has another schema version.
	Load() (*HashState, error)

	// Save writes the state atomically.
	Save(state *HashState) error
}

// FileStore implements Store with a JSON file.
type FileStore struct {
	fs   fsops.FS
	path string
	log  zerolog.Logger
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(fs fsops.FS, path string, log zerolog.Logger) *FileStore {
	return &FileStore{fs: fs, path: path, log: log}
}

// Load reads the hash state. The state is only a cache of file digests, so a
// corrupt file is discarded and everything is rehashed.
func (s *FileStore) Load() (*HashState, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewHashState(), nil
		}
		return nil, fmt.Errorf("failed to read hash state: %w", err)
	}

	var st HashState
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.Debug().Err(err).Str("path", s.path).Msg("discarding corrupt hash state")
		return NewHashState(), nil
	}
	if st.SchemaVersion != SchemaVersion || st.Entries == nil {
		return NewHashState(), nil
	}

	return &st, nil
}

// Save writes the hash state atomically.
func (s *FileStore) Save(st *HashState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal hash state: %w", err)
	}

	if err := s.fs.AtomicWrite(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write hash state: %w", err)
	}

	return nil
}

// MemoryStore implements Store in memory for tests.
type MemoryStore struct {
	State *HashState
	Saves int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored state or an empty one.
func (s *MemoryStore) Load() (*HashState, error) {
	if s.State == nil {
		return NewHashState(), nil
	}
	return s.State, nil
}

// Save keeps st.
func (s *MemoryStore) Save(st *HashState) error {
	s.State = st
	s.Saves++
	return nil
}
