package planner

import (
	"fmt"
	"path/filepath"

	"github.com/danieljhkim/dsync/internal/targets"
)

// BuildCheckoutPlan generates a deterministic plan to write outputs into
// the workspace at root. Outputs are visited in order; an output declared
// twice with the same digest is planned once, with different digests it is
// a conflict.
func BuildCheckoutPlan(outputs []targets.Output, root string, checker *ConflictChecker) (*CheckoutPlan, error) {
	plan := NewCheckoutPlan()

	// Track which target claimed each path
	claimed := make(map[string]targets.Output)

	for _, out := range outputs {
		if prev, ok := claimed[out.Path]; ok {
			if prev.Digest != out.Digest {
				plan.AddConflict(Conflict{
					Path:     out.Path,
					Reason:   fmt.Sprintf("Declared by %s and %s with different content", prev.Target, out.Target),
					Existing: prev.Digest.String(),
					Incoming: out.Digest.String(),
				})
			}
			continue
		}
		claimed[out.Path] = out

		destPath := filepath.Join(root, filepath.FromSlash(out.Path))
		opType, conflict, err := checker.CheckPath(destPath, out.Path, out.Digest)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			plan.AddConflict(*conflict)
			continue
		}
		if opType == "" {
			plan.UpToDate++
			continue
		}

		plan.AddOperation(Operation{
			Type:     opType,
			RelPath:  out.Path,
			DestPath: destPath,
			Digest:   out.Digest,
			Size:     out.Size,
		})
	}

	return plan, nil
}
