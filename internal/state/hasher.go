package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/danieljhkim/dsync/internal/hash"
)

// CachedHasher hashes workspace files, reusing digests of files whose size
// and modification time did not change. It is safe for concurrent use.
type CachedHasher struct {
	hasher hash.Hasher
	store  Store
	root   string

	mu     sync.Mutex
	state  *HashState
	loaded bool
	dirty  bool
}

// NewCachedHasher creates a CachedHasher for the workspace at root.
func NewCachedHasher(hasher hash.Hasher, store Store, root string) *CachedHasher {
	return &CachedHasher{hasher: hasher, store: store, root: root}
}

func (h *CachedHasher) load() error {
	if h.loaded {
		return nil
	}
	st, err := h.store.Load()
	if err != nil {
		return err
	}
	h.state = st
	h.loaded = true
	return nil
}

// Digest returns the digest of the workspace file rel, described by info.
func (h *CachedHasher) Digest(rel string, info os.FileInfo) (digest.Digest, error) {
	h.mu.Lock()
	if err := h.load(); err != nil {
		h.mu.Unlock()
		return "", err
	}
	entry, ok := h.state.Entries[rel]
	h.mu.Unlock()

	if ok && entry.Matches(info.Size(), info.ModTime()) {
		return entry.Digest, nil
	}

	d, err := h.hasher.HashFile(filepath.Join(h.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", rel, err)
	}

	h.Record(rel, info, d)
	return d, nil
}

// Record stores the digest of a file dsync just wrote.
func (h *CachedHasher) Record(rel string, info os.FileInfo, d digest.Digest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.load(); err != nil {
		return
	}
	h.state.Entries[rel] = Entry{Size: info.Size(), MTime: info.ModTime(), Digest: d}
	h.dirty = true
}

// Flush saves the state if it changed.
func (h *CachedHasher) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dirty {
		return nil
	}
	if err := h.store.Save(h.state); err != nil {
		return err
	}
	h.dirty = false
	return nil
}
