package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidNameFor(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		isValid bool
	}{
		{"notes.txt", "linux", true},
		{"a:b", "linux", true},
		{`back\slash`, "linux", true},
		{"a/b", "linux", false},
		{"", "linux", false},
		{"..", "linux", false},
		{"notes.txt", "windows", true},
		{"a:b", "windows", false},
		{"what?", "windows", false},
		{`say "hi"`, "windows", false},
		{"<tag>", "windows", false},
		{"pipe|d", "windows", false},
		{"star*", "windows", false},
		{`back\slash`, "windows", false},
		{"a/b", "windows", false},
		{"a:b", "darwin", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.isValid, validNameFor(tt.name, tt.goos), "%s on %s", tt.name, tt.goos)
	}
}

func uniquePath(t *testing.T, dir, name string, isDir bool) string {
	t.Helper()
	p, err := UniquePath(dir, name, isDir)
	require.NoError(t, err)
	return p
}

func TestUniquePathFiles(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, filepath.Join(dir, "report.txt"), uniquePath(t, dir, "report.txt", false))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.txt"), nil, 0o644))
	first := uniquePath(t, dir, "report.txt", false)
	assert.Equal(t, filepath.Join(dir, "report (1).txt"), first)

	require.NoError(t, os.WriteFile(first, nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "report (2).txt"), uniquePath(t, dir, "report.txt", false))
}

func TestUniquePathFolders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "data"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "v1.2"), 0o755))

	assert.Equal(t, filepath.Join(dir, "data (1)"), uniquePath(t, dir, "data", true))
	assert.Equal(t, filepath.Join(dir, "v1.2 (1)"), uniquePath(t, dir, "v1.2", true))
}

func TestUniquePathDotfile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), nil, 0o644))

	assert.Equal(t, filepath.Join(dir, ".env (1)"), uniquePath(t, dir, ".env", false))
}

func TestUniquePathStopsOnUncheckableName(t *testing.T) {
	dir := t.TempDir()
	name := strings.Repeat("a", 251) + ".txt"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))

	// every "(n)" candidate is longer than a path component may be
	_, err := UniquePath(dir, name, false)
	assert.Error(t, err)
}
