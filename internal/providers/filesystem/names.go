package filesystem

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	windowsInvalidChars = `\/:*?"<>|`
	posixInvalidChars   = `/`
)

// invalidChars returns the characters a single name may not contain on goos
func invalidChars(goos string) string {
	if goos == "windows" {
		return windowsInvalidChars
	}
	return posixInvalidChars
}

// ValidName reports whether name is usable as a file or folder name on the
// running platform
func ValidName(name string) bool {
	return validNameFor(name, runtime.GOOS)
}

func validNameFor(name, goos string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, invalidChars(goos))
}

// UniquePath returns a path inside destDir for name that does not exist yet.
// On collision " (n)" is inserted before the extension of files, or appended
// to folder names, counting up from 1. A candidate that cannot be checked
// ends the search with its error.
func UniquePath(destDir, name string, isDir bool) (string, error) {
	candidate := filepath.Join(destDir, name)
	taken, err := Lexists(candidate)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}

	base, ext := name, ""
	if !isDir {
		ext = filepath.Ext(name)
		base = strings.TrimSuffix(name, ext)
		// dotfiles like ".env" have no stem; treat the whole name as the stem
		if base == "" {
			base, ext = name, ""
		}
	}

	for n := 1; ; n++ {
		candidate = filepath.Join(destDir, fmt.Sprintf("%s (%d)%s", base, n, ext))
		taken, err := Lexists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}
