// Package hash computes content digests for tracked data.
//
// Every object in the cache and on a remote is addressed by the digest of its
// content, written in the canonical "<algorithm>:<hex>" form. The package
// provides a real SHA-256 implementation and a fake for tests.
package hash

import (
	_ "crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

// Algorithm is the digest algorithm used for all new objects.
const Algorithm = digest.SHA256

// Hasher provides an abstraction for content hashing.
type Hasher interface {
	// HashFile computes the digest of the file at the given path.
	HashFile(path string) (digest.Digest, error)

	// HashReader computes the digest of everything read from r.
	HashReader(r io.Reader) (digest.Digest, error)
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashFile computes the SHA-256 digest of the file at the given path.
func (h *SHA256Hasher) HashFile(path string) (digest.Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return h.HashReader(file)
}

// HashReader computes the SHA-256 digest of the stream.
func (h *SHA256Hasher) HashReader(r io.Reader) (digest.Digest, error) {
	d, err := Algorithm.FromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return d, nil
}

// FromBytes returns the digest of an in-memory blob.
func FromBytes(p []byte) digest.Digest {
	return Algorithm.FromBytes(p)
}

// FakeHasher implements Hasher with predetermined digests for testing.
type FakeHasher struct {
	digests map[string]digest.Digest
	Calls   []string
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{
		digests: make(map[string]digest.Digest),
	}
}

// SetDigest sets the digest returned for a specific path.
func (h *FakeHasher) SetDigest(path string, d digest.Digest) {
	h.digests[path] = d
}

// HashFile returns the predetermined digest for the given path, falling back
// to the digest of the path string itself.
func (h *FakeHasher) HashFile(path string) (digest.Digest, error) {
	h.Calls = append(h.Calls, path)
	if d, ok := h.digests[path]; ok {
		return d, nil
	}
	return FromBytes([]byte(path)), nil
}

// HashReader hashes the stream for real; only file lookups are faked.
func (h *FakeHasher) HashReader(r io.Reader) (digest.Digest, error) {
	return Algorithm.FromReader(r)
}
