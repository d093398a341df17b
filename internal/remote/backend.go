// Package remote provides the storage backends dsync pushes to and fetches
// from.
//
// A remote is configured by name in .dsync/config.toml and selected by the
// scheme of its URL:
//
//	/abs/dir, rel/dir, file:///dir  directory on the local filesystem
//	mem://name                      process-wide in-memory store
//	s3://bucket/prefix              Amazon S3 or an S3 compatible service
//
// Every backend stores objects under the same <hex[:2]>/<hex[2:]> layout
// as the local cache.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/danieljhkim/dsync/internal/config"
)

// Backend is a remote object store.
type Backend interface {
	// Name returns the configured remote name.
	Name() string

	// Exists reports whether object d is on the remote.
	Exists(ctx context.Context, d digest.Digest) (bool, error)

	// Upload stores size bytes read from r under d.
	Upload(ctx context.Context, d digest.Digest, r io.ReadSeeker, size int64) error

	// Open streams object d from the remote. Returns ErrObjectNotFound if
	// it does not exist. The caller closes the reader.
	Open(ctx context.Context, d digest.Digest) (io.ReadCloser, error)
}

// S3ClientFactory builds an S3 client for a remote.
type S3ClientFactory func(ctx context.Context, rs config.RemoteSettings) (S3API, error)

// Opener resolves remote names to backends.
type Opener struct {
	// Root resolves relative directory URLs
	Root string

	// NewS3Client builds S3 clients, NewS3Client when nil
	NewS3Client S3ClientFactory
}

// NewOpener creates an Opener for the repository at root.
func NewOpener(root string) *Opener {
	return &Opener{Root: root, NewS3Client: NewS3Client}
}

// Open returns the backend of the remote called name.
func (o *Opener) Open(ctx context.Context, name string, settings *config.Settings) (Backend, error) {
	rs, ok := settings.Remotes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
	}

	u, err := parseURL(rs.URL)
	if err != nil {
		return nil, fmt.Errorf("remote %s: %w", name, err)
	}

	switch u.Scheme {
	case "", "file":
		dir := filepath.FromSlash(u.Path)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(o.Root, dir)
		}
		return NewDirBackend(name, dir), nil

	case "mem":
		return NewMemoryBackend(name, u.Host+u.Path), nil

	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("remote %s: s3 URL %q has no bucket", name, rs.URL)
		}
		factory := o.NewS3Client
		if factory == nil {
			factory = NewS3Client
		}
		client, err := factory(ctx, rs)
		if err != nil {
			return nil, fmt.Errorf("remote %s: %w", name, err)
		}
		return NewS3Backend(name, client, u.Host, strings.Trim(u.Path, "/")), nil

	default:
		return nil, fmt.Errorf("%w: %q (remote %s)", ErrUnsupportedScheme, u.Scheme, name)
	}
}

// ValidateURL checks that raw names a supported backend.
func ValidateURL(raw string) error {
	u, err := parseURL(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "", "file", "mem", "s3":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func parseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty remote URL")
	}

	// Plain paths, including Windows drive letters, are directories.
	if !strings.Contains(raw, "://") {
		return &url.URL{Path: filepath.ToSlash(raw)}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid remote URL %q: %w", raw, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}
