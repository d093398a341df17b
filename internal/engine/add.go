package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/dsync/internal/config"
	"github.com/danieljhkim/dsync/internal/targets"
)

// Add stores the data at each path in the cache and writes <path>.dsync
// next to it. A directory is tracked by one target file listing every file
// below it. Returns the repository-relative target files written.
func (e *Engine) Add(paths []string) ([]string, error) {
	written := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := resolveToRepoRelative(p, e.cwd, e.paths.Root)
		if err != nil {
			return written, err
		}
		if rel == "." {
			return written, fmt.Errorf("cannot track the repository root")
		}
		if strings.HasSuffix(rel, config.TargetExt) {
			return written, fmt.Errorf("%s is a target file", rel)
		}
		if err := e.fs.ValidateRelPath(rel); err != nil {
			return written, err
		}

		f, err := e.track(rel)
		if err != nil {
			return written, err
		}

		targetRel := rel + config.TargetExt
		if err := targets.Save(e.fs, e.paths.Abs(targetRel), f); err != nil {
			return written, err
		}
		e.log.Debug().Str("target", targetRel).Int("outs", len(f.Outs)).Msg("target file written")
		written = append(written, targetRel)
	}

	if err := e.hasher.Flush(); err != nil {
		return written, fmt.Errorf("failed to save hash state: %w", err)
	}
	return written, nil
}

// track hashes the file or directory rel into the cache.
func (e *Engine) track(rel string) (*targets.File, error) {
	abs := e.paths.Abs(rel)
	info, err := e.fs.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", rel, err)
	}

	base := path.Base(rel)
	if !info.IsDir() {
		out, err := e.store(rel, base, info)
		if err != nil {
			return nil, err
		}
		return &targets.File{Outs: []targets.Out{out}}, nil
	}

	f := &targets.File{}
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name == ".git" || name == config.DirName {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasSuffix(d.Name(), config.TargetExt) {
			return nil
		}

		sub, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		fileInfo, err := d.Info()
		if err != nil {
			return err
		}
		out, err := e.store(path.Join(rel, filepath.ToSlash(sub)), path.Join(base, filepath.ToSlash(sub)), fileInfo)
		if err != nil {
			return err
		}
		f.Outs = append(f.Outs, out)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add %s: %w", rel, err)
	}
	if len(f.Outs) == 0 {
		return nil, fmt.Errorf("%s contains no files", rel)
	}
	return f, nil
}

// store adds the workspace file rel to the cache. outPath is its path
// relative to the target file.
func (e *Engine) store(rel, outPath string, info os.FileInfo) (targets.Out, error) {
	file, err := os.Open(e.paths.Abs(rel))
	if err != nil {
		return targets.Out{}, fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer func() {
		_ = file.Close()
	}()

	d, size, err := e.cache.Add(file)
	if err != nil {
		return targets.Out{}, fmt.Errorf("failed to cache %s: %w", rel, err)
	}
	e.hasher.Record(rel, info, d)

	return targets.Out{Path: outPath, Digest: d, Size: size}, nil
}
