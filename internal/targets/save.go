package targets

import (
	"fmt"

	"github.com/danieljhkim/dsync/internal/fsops"
)

// Save writes f to the absolute path dst atomically.
func Save(fs fsops.FS, dst string, f *File) error {
	if err := f.Validate(); err != nil {
		return err
	}

	data, err := f.Marshal()
	if err != nil {
		return err
	}

	if err := fs.AtomicWrite(dst, data, 0644); err != nil {
		return fmt.Errorf("failed to write target file %s: %w", dst, err)
	}
	return nil
}
