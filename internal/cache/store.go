// Package cache implements the content-addressable object store.
//
// Objects are addressed by digest and stored at <hex[:2]>/<hex[2:]> below
// the store root. The same store backs the workspace cache (.dsync/cache)
// and the directory and in-memory remotes; only the billy filesystem
// underneath differs. Writes are staged in a temp file and renamed into
// place once the content was verified, so a stored object always matches
// its address.
package cache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/opencontainers/go-digest"

	"github.com/danieljhkim/dsync/internal/hash"
)

var (
	// ErrDigestMismatch is returned when written content does not hash to the
	// digest it was stored under.
	ErrDigestMismatch = errors.New("content does not match digest")

	// ErrObjectNotFound is returned when an object is not in the store.
	ErrObjectNotFound = errors.New("object not found")
)

const tmpDir = ".tmp"

// ObjectPath returns the slash-separated location of d below a store root.
func ObjectPath(d digest.Digest) string {
	hex := d.Encoded()
	return path.Join(hex[:2], hex[2:])
}

// Store is a content-addressable object store on a billy filesystem. It is
// safe for concurrent use: filesystem metadata calls are serialized, since
// memfs keeps its tree in unguarded maps. Object content is streamed
// outside the lock.
type Store struct {
	mu sync.RWMutex
	fs billy.Filesystem
}

// New creates a Store on fs.
func New(fs billy.Filesystem) *Store {
	return &Store{fs: fs}
}

// NewOS creates a Store rooted at the directory root.
func NewOS(root string) *Store {
	return New(osfs.New(root))
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *Store {
	return New(memfs.New())
}

// Root returns the root of the underlying filesystem.
func (s *Store) Root() string {
	return s.fs.Root()
}

func (s *Store) objectPath(d digest.Digest) (string, error) {
	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("invalid digest %q: %w", d, err)
	}
	return filepath.FromSlash(ObjectPath(d)), nil
}

// Has reports whether the object d is present.
func (s *Store) Has(d digest.Digest) (bool, error) {
	p, err := s.objectPath(d)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	_, err = s.fs.Stat(p)
	s.mu.RUnlock()
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat object %s: %w", d, err)
	}
}

// Size returns the stored size of object d.
func (s *Store) Size(d digest.Digest) (int64, error) {
	p, err := s.objectPath(d)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	info, err := s.fs.Stat(p)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrObjectNotFound, d)
		}
		return 0, fmt.Errorf("failed to stat object %s: %w", d, err)
	}
	return info.Size(), nil
}

// Open opens object d for reading. The caller closes the reader.
func (s *Store) Open(d digest.Digest) (io.ReadSeekCloser, error) {
	p, err := s.objectPath(d)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	f, err := s.fs.Open(p)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, d)
		}
		return nil, fmt.Errorf("failed to open object %s: %w", d, err)
	}
	return f, nil
}

// Put stores the content of r under d and returns the number of bytes
// written. The content is verified against d before it becomes visible; on
// mismatch nothing is stored and ErrDigestMismatch is returned. Putting an
// object that already exists is a no-op that does not read r.
func (s *Store) Put(d digest.Digest, r io.Reader) (int64, error) {
	dst, err := s.objectPath(d)
	if err != nil {
		return 0, err
	}

	exists, err := s.Has(d)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, nil
	}

	verifier := d.Verifier()
	tmp, n, err := s.stage(io.TeeReader(r, verifier))
	if err != nil {
		return 0, err
	}

	if !verifier.Verified() {
		s.remove(tmp)
		return 0, fmt.Errorf("%w: %s", ErrDigestMismatch, d)
	}

	if err := s.commit(tmp, dst); err != nil {
		return 0, err
	}
	return n, nil
}

// Add stores the content of r under its own digest and returns the digest
// and the number of bytes written.
func (s *Store) Add(r io.Reader) (digest.Digest, int64, error) {
	digester := hash.Algorithm.Digester()
	tmp, n, err := s.stage(io.TeeReader(r, digester.Hash()))
	if err != nil {
		return "", 0, err
	}

	d := digester.Digest()
	dst, err := s.objectPath(d)
	if err != nil {
		s.remove(tmp)
		return "", 0, err
	}

	if err := s.commit(tmp, dst); err != nil {
		return "", 0, err
	}
	return d, n, nil
}

// stage copies r into a new temp file and returns its name.
func (s *Store) stage(r io.Reader) (string, int64, error) {
	f, err := s.tempFile()
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	name := f.Name()

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		s.remove(name)
		return "", 0, fmt.Errorf("failed to write object: %w", err)
	}

	return name, n, nil
}

func (s *Store) tempFile() (billy.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(tmpDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return util.TempFile(s.fs, tmpDir, "obj-")
}

func (s *Store) remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.fs.Remove(name)
}

func (s *Store) commit(tmp, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	if err := s.fs.Rename(tmp, dst); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to commit object: %w", err)
	}
	return nil
}
