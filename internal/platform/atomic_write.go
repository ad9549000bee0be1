package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// Replaceable for testing error paths.
var (
	osCreateTemp = os.CreateTemp
	osRename     = os.Rename
)

// AtomicWrite replaces the file at path with data via a temp file and
// rename, so a reader never observes a partial write. The temp file is
// created next to the target to stay on the same filesystem.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp, err := osCreateTemp(filepath.Dir(path), ".exia-*")
	if err != nil {
		return fmt.Errorf("atomic write: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("atomic write: write: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("atomic write: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("atomic write: close: %w", err)
	}
	if err := osRename(tmpName, path); err != nil {
		return fmt.Errorf("atomic write: rename: %w", err)
	}
	return nil
}
