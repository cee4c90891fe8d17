//go:build !linux

package filesystem

import "os"

func renameNoReplace(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}
