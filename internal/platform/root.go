package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSnapshotName is the snapshot file the CLI reads and writes when no
// explicit path is given.
const DefaultSnapshotName = "strata.yaml"

// FindRoot recursively looks upwards for a repository indicator: a
// strata.yaml snapshot or a .strata directory. Returns the directory that
// holds it.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, DefaultSnapshotName) || hasFile(dir, ".strata") {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no repository found above %s", startDir)
}

func hasFile(dir, name string) bool {
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	return err == nil
}
