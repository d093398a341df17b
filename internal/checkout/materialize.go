// Package checkout materializes cached objects into the workspace.
//
// A checkout executes a planner.CheckoutPlan: every operation streams one
// object from the cache to its workspace path through an atomic write, so
// an interrupted pull never leaves a truncated data file behind. Written
// files are recorded in the hash state, which keeps the next status from
// rehashing them.
package checkout

import (
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/danieljhkim/dsync/internal/fsops"
	"github.com/danieljhkim/dsync/internal/planner"
)

// ObjectSource opens stored objects.
type ObjectSource interface {
	Open(d digest.Digest) (io.ReadSeekCloser, error)
}

// Recorder remembers the digest of a file just written.
type Recorder interface {
	Record(rel string, info os.FileInfo, d digest.Digest)
}

// Materializer writes planned outputs into the workspace.
type Materializer struct {
	fs       fsops.FS
	objects  ObjectSource
	recorder Recorder
}

// NewMaterializer creates a Materializer. recorder may be nil.
func NewMaterializer(fs fsops.FS, objects ObjectSource, recorder Recorder) *Materializer {
	return &Materializer{
		fs:       fs,
		objects:  objects,
		recorder: recorder,
	}
}

// Apply executes the operations of plan in order and returns how many files
// were written. It refuses plans with conflicts. On error the files written
// so far stay in place and their count is returned with the error.
func (m *Materializer) Apply(plan *planner.CheckoutPlan) (int, error) {
	if plan.HasConflicts() {
		return 0, fmt.Errorf("refusing to apply a plan with %d conflicts", len(plan.Conflicts))
	}

	written := 0
	for _, op := range plan.Operations {
		if err := m.write(op); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (m *Materializer) write(op planner.Operation) error {
	if op.Type == planner.OpOverwrite {
		info, err := m.fs.Stat(op.DestPath)
		if err == nil && info.IsDir() {
			if err := m.fs.RemoveAll(op.DestPath); err != nil {
				return fmt.Errorf("failed to remove directory %s: %w", op.RelPath, err)
			}
		}
	}

	rc, err := m.objects.Open(op.Digest)
	if err != nil {
		return fmt.Errorf("failed to open %s for %s: %w", op.Digest, op.RelPath, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	if _, err := m.fs.WriteStream(op.DestPath, rc, 0644); err != nil {
		return fmt.Errorf("failed to check out %s: %w", op.RelPath, err)
	}

	if m.recorder != nil {
		info, err := m.fs.Stat(op.DestPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", op.RelPath, err)
		}
		m.recorder.Record(op.RelPath, info, op.Digest)
	}
	return nil
}
