package platform

import (
	"fmt"
	"os"
)

// Chmod applies the permission bits recorded for an unpacked file. Only the
// permission bits of mode are used. Windows has no Unix permission bits, so
// it is a no-op there.
func Chmod(path string, mode os.FileMode) error {
	if IsWindows() {
		return nil
	}
	if err := os.Chmod(path, mode.Perm()); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	return nil
}
