package filesystem

import (
	"errors"
	"io/fs"
	"os"

	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

// Trasher moves a path into a recoverable deletion store and returns where
// it ended up
type Trasher interface {
	Trash(path string) (string, error)
}

// Exists reports whether path exists. Broken symlinks exist, and so does
// anything that cannot be checked.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// Lexists reports whether path exists without following a final symlink.
// Failures other than not-found (name too long, search permission denied)
// are returned instead of guessed.
func Lexists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// isSymlink reports whether path itself is a symbolic link
func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

// IsDir reports whether path exists and is a directory, following symlinks
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// noun returns the user facing word for kind
func noun(kind types.ItemKind) string {
	if kind == types.KindFolder {
		return "folder"
	}
	return "file"
}
