package registry

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirName is the directory created under the platform data home
const DataDirName = "wunderkammer"

// PathProvider turns a collection root name into an absolute directory
type PathProvider interface {
	Resolve(root string) (string, error)
}

// DataDir resolves roots relative to a fixed base directory. Absolute
// roots are returned unchanged.
type DataDir struct {
	Base string
}

// Resolve joins root onto the base directory
func (d DataDir) Resolve(root string) (string, error) {
	if filepath.IsAbs(root) {
		return filepath.Clean(root), nil
	}
	abs, err := filepath.Abs(filepath.Join(d.Base, root))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	return abs, nil
}

// UserDataDir returns the per-user data area:
// 1. $XDG_DATA_HOME/wunderkammer
// 2. ~/.local/share/wunderkammer
func UserDataDir() (DataDir, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return DataDir{Base: filepath.Join(xdgData, DataDirName)}, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return DataDir{}, fmt.Errorf("locate user data area: %w", err)
	}
	return DataDir{Base: filepath.Join(home, ".local", "share", DataDirName)}, nil
}
