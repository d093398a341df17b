package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/danieljhkim/dsync/internal/cache"
)

var (
	memMu     sync.Mutex
	memStores = make(map[string]*cache.Store)
)

// StoreBackend serves a remote from a cache.Store. It backs the directory
// and in-memory remotes.
type StoreBackend struct {
	name  string
	store *cache.Store
}

// NewDirBackend returns a backend storing objects below dir.
func NewDirBackend(name, dir string) *StoreBackend {
	return &StoreBackend{name: name, store: cache.NewOS(dir)}
}

// NewMemoryBackend returns a backend on the in-memory store called id.
// Backends opened with the same id share their objects for the lifetime of
// the process.
func NewMemoryBackend(name, id string) *StoreBackend {
	memMu.Lock()
	defer memMu.Unlock()

	store, ok := memStores[id]
	if !ok {
		store = cache.NewMemory()
		memStores[id] = store
	}
	return &StoreBackend{name: name, store: store}
}

// ResetMemory drops every in-memory store.
func ResetMemory() {
	memMu.Lock()
	defer memMu.Unlock()
	memStores = make(map[string]*cache.Store)
}

// Name returns the remote name.
func (b *StoreBackend) Name() string {
	return b.name
}

// Exists reports whether object d is stored.
func (b *StoreBackend) Exists(_ context.Context, d digest.Digest) (bool, error) {
	return b.store.Has(d)
}

// Upload stores r under d, verifying its content.
func (b *StoreBackend) Upload(ctx context.Context, d digest.Digest, r io.ReadSeeker, _ int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.store.Put(d, r); err != nil {
		return fmt.Errorf("failed to upload %s: %w", d, err)
	}
	return nil
}

// Open opens object d.
func (b *StoreBackend) Open(ctx context.Context, d digest.Digest) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := b.store.Open(d)
	if err != nil {
		if errors.Is(err, cache.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, d)
		}
		return nil, err
	}
	return rc, nil
}
