package targets

import (
	"fmt"
	"path"
	"strings"

	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"
)

// File is the content of a target file (<name>.dsync).
type File struct {
	// Outs are the data files tracked by this target
	Outs []Out `yaml:"outs"`

	// Deps are other target files, relative to this file's directory
	Deps []string `yaml:"deps,omitempty"`
}

// Out is one tracked data file.
type Out struct {
	// Path is relative to the target file's directory
	Path string `yaml:"path"`

	// Digest addresses the content in the cache and on remotes
	Digest digest.Digest `yaml:"digest"`

	// Size is the content length in bytes
	Size int64 `yaml:"size"`
}

// Output is an Out resolved against the repository root.
type Output struct {
	// Path is the repository-relative slash path of the data file
	Path string `json:"path"`

	Digest digest.Digest `json:"digest"`
	Size   int64         `json:"size"`

	// Target is the repository-relative path of the declaring target file
	Target string `json:"target"`
}

// Parse decodes and validates a target file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse target file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Marshal encodes f as YAML.
func (f *File) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal target file: %w", err)
	}
	return data, nil
}

// Validate checks paths and digests. Out paths may not leave the target's
// directory tree through "..", and may not repeat.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Outs))
	for i, out := range f.Outs {
		if err := validateRel(out.Path); err != nil {
			return fmt.Errorf("outs[%d]: %w", i, err)
		}
		if err := out.Digest.Validate(); err != nil {
			return fmt.Errorf("outs[%d] %s: invalid digest %q: %w", i, out.Path, out.Digest, err)
		}
		if out.Size < 0 {
			return fmt.Errorf("outs[%d] %s: negative size", i, out.Path)
		}
		clean := path.Clean(out.Path)
		if seen[clean] {
			return fmt.Errorf("outs[%d]: duplicate path %s", i, out.Path)
		}
		seen[clean] = true
	}

	for i, dep := range f.Deps {
		if dep == "" || path.IsAbs(dep) {
			return fmt.Errorf("deps[%d]: must be a relative path, got %q", i, dep)
		}
	}
	return nil
}

// Outputs resolves the outs of f, declared by the target file at rel.
func (f *File) Outputs(rel string) []Output {
	dir := path.Dir(rel)
	outputs := make([]Output, 0, len(f.Outs))
	for _, out := range f.Outs {
		outputs = append(outputs, Output{
			Path:   path.Join(dir, out.Path),
			Digest: out.Digest,
			Size:   out.Size,
			Target: rel,
		})
	}
	return outputs
}

func validateRel(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}
	if path.IsAbs(p) {
		return fmt.Errorf("path %q must be relative", p)
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path %q escapes the target directory", p)
	}
	return nil
}
