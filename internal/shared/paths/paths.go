package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AppName names the per-user application directory
const AppName = "foldergraph"

// Layout of the application data directory
const (
	WorldsDir  = "worlds"
	IndexFile  = "index.json"
	LockFile   = "index.lock"
	PayloadExt = ".json"
)

// Normalize returns the cleaned absolute form of path. Symlinks in the
// existing prefix of the path are resolved so that two spellings of the same
// location compare equal.
func Normalize(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return resolveExisting(filepath.Clean(abs)), nil
}

// resolveExisting evaluates symlinks on the longest existing prefix of path
// and re-attaches the non-existent remainder.
func resolveExisting(path string) string {
	rest := ""
	cur := path
	for {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			if rest == "" {
				return resolved
			}
			return filepath.Join(resolved, rest)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return path
		}
		rest = filepath.Join(filepath.Base(cur), rest)
		cur = parent
	}
}

// IsWithin reports whether path equals ancestor or is nested below it.
// Both arguments are normalized first; normalization failures report false.
func IsWithin(path, ancestor string) bool {
	p, err := Normalize(path)
	if err != nil {
		return false
	}
	a, err := Normalize(ancestor)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(a, p)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// DataDir returns the default per-user application data directory
func DataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// Worlds returns the worlds directory inside a data directory
func Worlds(dataDir string) string {
	return filepath.Join(dataDir, WorldsDir)
}

// DefaultTrashDir returns the platform trash location: the XDG home trash on
// Linux and BSDs, ~/.Trash on macOS, and an app-owned directory elsewhere.
func DefaultTrashDir(dataDir string) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".Trash"), nil
	case "windows", "plan9", "js", "wasip1":
		return filepath.Join(dataDir, "Trash"), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" && filepath.IsAbs(xdg) {
			return filepath.Join(xdg, "Trash"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "Trash"), nil
	}
}

// ValidateFileName checks that name is a single path element, suitable for
// joining onto a directory the caller owns.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("file name cannot be %q", name)
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name || filepath.IsAbs(name) {
		return fmt.Errorf("file name %q contains path separators", name)
	}
	return nil
}
