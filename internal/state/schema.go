package state

import (
	"time"

	"github.com/opencontainers/go-digest"
)

// SchemaVersion is the current hash state format.
const SchemaVersion = 1

// HashState maps repository-relative slash paths to their last known digest.
type HashState struct {
	// SchemaVersion is the version of this schema
	SchemaVersion int `json:"schemaVersion"`

	// Entries maps workspace paths to hash entries
	Entries map[string]Entry `json:"entries"`
}

// Entry is the digest a file had at a given size and modification time.
type Entry struct {
	Size   int64         `json:"size"`
	MTime  time.Time     `json:"mtime"`
	Digest digest.Digest `json:"digest"`
}

// Matches reports whether the entry still describes a file with the given
// size and modification time.
func (e Entry) Matches(size int64, mtime time.Time) bool {
	return e.Size == size && e.MTime.Equal(mtime)
}

// NewHashState creates an empty HashState.
func NewHashState() *HashState {
	return &HashState{
		SchemaVersion: SchemaVersion,
		Entries:       make(map[string]Entry),
	}
}
