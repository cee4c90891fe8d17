package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/otiai10/copy"
)

const (
	trashInfoTimeFormat = "2006-01-02T15:04:05"
	trashInfoExt        = ".trashinfo"
	// longest single path component on common filesystems, in bytes
	maxNameBytes = 255
)

// HomeTrash implements the freedesktop.org home trash layout: items go to
// <dir>/files and a matching <dir>/info/<name>.trashinfo records where they
// came from, so desktop file managers can restore them. On macOS the info
// records are skipped and items land directly in ~/.Trash.
type HomeTrash struct {
	dir       string
	writeInfo bool
	now       func() time.Time
}

// NewTrash creates a trash rooted at dir
func NewTrash(dir string) *HomeTrash {
	return &HomeTrash{
		dir:       dir,
		writeInfo: runtime.GOOS != "darwin",
		now:       time.Now,
	}
}

// Dir returns the trash root
func (t *HomeTrash) Dir() string {
	return t.dir
}

func (t *HomeTrash) filesDir() string {
	if !t.writeInfo {
		return t.dir
	}
	return filepath.Join(t.dir, "files")
}

func (t *HomeTrash) infoDir() string {
	return filepath.Join(t.dir, "info")
}

// Trash moves path into the trash and returns its new location
func (t *HomeTrash) Trash(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(abs); err != nil {
		return "", err
	}

	if err := os.MkdirAll(t.filesDir(), 0o700); err != nil {
		return "", fmt.Errorf("create trash: %w", err)
	}
	if t.writeInfo {
		if err := os.MkdirAll(t.infoDir(), 0o700); err != nil {
			return "", fmt.Errorf("create trash info: %w", err)
		}
	}

	name := filepath.Base(abs)
	limit := maxNameBytes
	if t.writeInfo {
		limit -= len(trashInfoExt)
	}
	for n := 1; ; n++ {
		suffix := ""
		if n > 1 {
			suffix = fmt.Sprintf(".%d", n)
		}
		candidate := truncateName(name, limit-len(suffix)) + suffix

		infoPath, err := t.reserve(candidate, abs)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}

		target := filepath.Join(t.filesDir(), candidate)
		if err := moveInto(abs, target); err != nil {
			if infoPath != "" {
				_ = os.Remove(infoPath)
			}
			return "", err
		}
		return target, nil
	}
}

// reserve claims candidate inside the trash. With info records the claim is
// the exclusive creation of the .trashinfo file, which makes concurrent
// trashing of same-named items safe.
func (t *HomeTrash) reserve(candidate, origin string) (string, error) {
	target := filepath.Join(t.filesDir(), candidate)
	if !t.writeInfo {
		taken, err := Lexists(target)
		if err != nil {
			return "", err
		}
		if taken {
			return "", fs.ErrExist
		}
		return "", nil
	}

	infoPath := filepath.Join(t.infoDir(), candidate+trashInfoExt)
	f, err := os.OpenFile(infoPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", err
	}
	taken, err := Lexists(target)
	if taken || err != nil {
		f.Close()
		_ = os.Remove(infoPath)
		if err != nil {
			return "", err
		}
		return "", fs.ErrExist
	}

	escaped := (&url.URL{Path: filepath.ToSlash(origin)}).EscapedPath()
	_, werr := fmt.Fprintf(f, "[Trash Info]\nPath=%s\nDeletionDate=%s\n", escaped, t.now().Format(trashInfoTimeFormat))
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(infoPath)
		return "", fmt.Errorf("write trash info: %w", werr)
	}
	return infoPath, nil
}

// truncateName cuts name to at most max bytes without splitting a rune.
// The full original path is kept in the info record.
func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}

// moveInto renames src to dst, copying across filesystems when a rename is
// impossible
func moveInto(src, dst string) error {
	err := renameNoReplace(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}

	opts := copy.Options{
		OnSymlink:     func(string) copy.SymlinkAction { return copy.Shallow },
		PreserveTimes: true,
		Sync:          true,
	}
	if err := copy.Copy(src, dst, opts); err != nil {
		_ = os.RemoveAll(dst)
		return fmt.Errorf("copy across devices: %w", err)
	}
	return os.RemoveAll(src)
}
