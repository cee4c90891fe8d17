package filesystem

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/foldergraph/internal/shared/failure"
	"github.com/GriffinCanCode/foldergraph/internal/shared/id"
	"github.com/GriffinCanCode/foldergraph/internal/shared/types"
)

var sizeUnits = []string{"b", "kb", "mb", "gb", "tb"}

// Scanner reads one directory level into typed entries
type Scanner struct {
	logger *zap.Logger
	ignore []string
}

// NewScanner creates a scanner. A nil logger discards output.
func NewScanner(logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{logger: logger}
}

// WithIgnore hides children whose name matches any of the glob patterns
func (s *Scanner) WithIgnore(patterns ...string) *Scanner {
	s.ignore = append(s.ignore, patterns...)
	return s
}

// ValidatePatterns reports the first malformed ignore pattern
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	return nil
}

func (s *Scanner) ignored(name string) bool {
	for _, p := range s.ignore {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Scan lists the immediate children of dirPath. Children that cannot be
// stat'd (dangling symlinks, races with deletion) and special files are
// left out; the directory itself must be listable.
func (s *Scanner) Scan(ctx context.Context, dirPath string) (*types.ScannedFolder, error) {
	const op = "scan-folder"

	if dirPath == "" {
		return nil, failure.New(failure.NotAccessible, op, dirPath, "path parameter required")
	}
	abs, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, failure.Wrap(failure.NotAccessible, op, dirPath, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, failure.Wrap(failure.NotAccessible, op, abs, err)
	}
	if !info.IsDir() {
		return nil, failure.New(failure.NotAccessible, op, abs, "not a directory")
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, failure.Wrap(failure.NotAccessible, op, abs, err)
	}

	folder := &types.ScannedFolder{
		DirPath:    abs,
		FolderID:   id.ForPath(abs).String(),
		FolderName: filepath.Base(abs),
		Files:      make([]types.Entry, 0, len(dirEntries)),
		Subfolders: make([]types.Entry, 0),
	}

	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, failure.IO(op, abs, err)
		}

		if s.ignored(de.Name()) {
			continue
		}

		childPath := filepath.Join(abs, de.Name())
		childInfo, err := os.Stat(childPath)
		if err != nil {
			s.logger.Debug("Skipping unreadable entry", zap.String("path", childPath), zap.Error(err))
			continue
		}

		entry := types.Entry{
			ID:   id.ForPath(childPath).String(),
			Name: de.Name(),
			Path: childPath,
		}

		switch {
		case childInfo.IsDir():
			entry.Kind = types.KindFolder
			folder.Subfolders = append(folder.Subfolders, entry)
		case childInfo.Mode().IsRegular():
			entry.Kind = types.KindFile
			entry.Size = FormatSize(childInfo.Size())
			folder.Files = append(folder.Files, entry)
		}
	}

	return folder, nil
}

// FormatSize renders a byte count with base-1000 units and at most two
// decimals, using the largest unit that keeps the magnitude under 1000.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 b"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1000 && unit < len(sizeUnits)-1 {
		value /= 1000
		unit++
	}

	rounded := math.Round(value*100) / 100
	// 999.995 kb rounds up to 1000 kb; carry into the next unit
	if rounded >= 1000 && unit < len(sizeUnits)-1 {
		rounded = math.Round(rounded/1000*100) / 100
		unit++
	}

	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[unit]
}
