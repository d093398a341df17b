// Package targets loads target files and resolves command-line targets to
// the data outputs they track.
//
// A target file (<name>.dsync) is a small YAML document listing data files
// with their digests and sizes, plus optional dependencies on other target
// files. A command-line target names a target file, the data path it
// tracks, or a directory of target files (with --recursive). The empty
// target stands for every target file in the repository.
package targets

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/danieljhkim/dsync/internal/config"
)

var (
	// ErrTargetNotFound is returned when a target names nothing tracked.
	ErrTargetNotFound = errors.New("target not found, is it tracked by a .dsync file?")

	// ErrNotRecursive is returned when a directory target is given without
	// --recursive.
	ErrNotRecursive = errors.New("target is a directory, use --recursive")
)

// Options controls resolution.
type Options struct {
	// WithDeps adds the transitive dependencies of each target file
	WithDeps bool

	// Recursive allows directory targets
	Recursive bool
}

// Resolver resolves targets against one Source.
type Resolver struct {
	src   Source
	files map[string]*File
}

// NewResolver creates a Resolver reading from src.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src, files: make(map[string]*File)}
}

// Load reads and parses the target file at rel, once per resolver.
func (r *Resolver) Load(rel string) (*File, error) {
	if f, ok := r.files[rel]; ok {
		return f, nil
	}

	data, err := r.src.ReadFile(rel)
	if err != nil {
		if isNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, rel)
		}
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", rel, r.src.Name(), err)
	}

	r.files[rel] = f
	return f, nil
}

// Resolve returns the target files named by target, in a stable order.
// target is repository-relative; "" selects every target file.
func (r *Resolver) Resolve(target string, opts Options) ([]string, error) {
	roots, err := r.expand(target, opts)
	if err != nil {
		return nil, err
	}
	if !opts.WithDeps {
		return roots, nil
	}
	return r.withDeps(roots)
}

// Outputs returns the outputs of the target files named by target.
func (r *Resolver) Outputs(target string, opts Options) ([]Output, error) {
	files, err := r.Resolve(target, opts)
	if err != nil {
		return nil, err
	}

	var outputs []Output
	for _, rel := range files {
		f, err := r.Load(rel)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, f.Outputs(rel)...)
	}
	return outputs, nil
}

func (r *Resolver) expand(target string, opts Options) ([]string, error) {
	if target == "" || target == "." {
		return r.src.List("")
	}

	target = path.Clean(target)
	if target == ".." || strings.HasPrefix(target, "../") {
		return nil, fmt.Errorf("%w: %s is outside the repository", ErrTargetNotFound, target)
	}

	candidates := []string{target + config.TargetExt}
	if strings.HasSuffix(target, config.TargetExt) {
		candidates = []string{target}
	}
	for _, c := range candidates {
		if _, err := r.Load(c); err == nil {
			return []string{c}, nil
		} else if !errors.Is(err, ErrTargetNotFound) {
			return nil, err
		}
	}

	isDir, err := r.src.IsDir(target)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", target, err)
	}
	if isDir {
		if !opts.Recursive {
			return nil, fmt.Errorf("%w: %s", ErrNotRecursive, target)
		}
		return r.src.List(target)
	}

	return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
}

// withDeps appends the transitive dependencies of roots breadth first.
// Each file appears once, so dependency cycles terminate.
func (r *Resolver) withDeps(roots []string) ([]string, error) {
	seen := make(map[string]bool, len(roots))
	queue := make([]string, 0, len(roots))
	for _, rel := range roots {
		if !seen[rel] {
			seen[rel] = true
			queue = append(queue, rel)
		}
	}

	for i := 0; i < len(queue); i++ {
		rel := queue[i]
		f, err := r.Load(rel)
		if err != nil {
			return nil, err
		}
		for _, dep := range f.Deps {
			depRel := path.Join(path.Dir(rel), dep)
			if depRel == ".." || strings.HasPrefix(depRel, "../") {
				return nil, fmt.Errorf("%s: dependency %s is outside the repository", rel, dep)
			}
			if seen[depRel] {
				continue
			}
			if _, err := r.Load(depRel); err != nil {
				return nil, fmt.Errorf("%s: dependency: %w", rel, err)
			}
			seen[depRel] = true
			queue = append(queue, depRel)
		}
	}
	return queue, nil
}
