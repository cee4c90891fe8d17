package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInfoTrash(t *testing.T) *HomeTrash {
	t.Helper()
	trash := NewTrash(filepath.Join(t.TempDir(), "Trash"))
	trash.writeInfo = true
	trash.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.Local) }
	return trash
}

func TestTrashWritesInfoRecord(t *testing.T) {
	trash := newInfoTrash(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "my notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("n"), 0o644))

	got, err := trash.Trash(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(trash.Dir(), "files", "my notes.txt"), got)
	assert.False(t, Exists(src))

	info, err := os.ReadFile(filepath.Join(trash.Dir(), "info", "my notes.txt.trashinfo"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(info)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[Trash Info]", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Path="))
	assert.Contains(t, lines[1], "my%20notes.txt")
	assert.Equal(t, "DeletionDate=2024-03-09T14:05:06", lines[2])
}

func TestTrashDisambiguatesSameName(t *testing.T) {
	trash := newInfoTrash(t)

	var got []string
	for i := 0; i < 3; i++ {
		src := filepath.Join(t.TempDir(), "dup.txt")
		require.NoError(t, os.WriteFile(src, []byte{byte('a' + i)}, 0o644))
		p, err := trash.Trash(src)
		require.NoError(t, err)
		got = append(got, filepath.Base(p))
	}

	assert.Equal(t, []string{"dup.txt", "dup.txt.2", "dup.txt.3"}, got)
	assert.True(t, Exists(filepath.Join(trash.Dir(), "info", "dup.txt.3.trashinfo")))
}

func TestTrashLongName(t *testing.T) {
	trash := newInfoTrash(t)
	name := strings.Repeat("b", 250)

	var got []string
	for i := 0; i < 2; i++ {
		src := filepath.Join(t.TempDir(), name)
		require.NoError(t, os.WriteFile(src, []byte("long"), 0o644))
		p, err := trash.Trash(src)
		require.NoError(t, err)
		assert.False(t, Exists(src))
		got = append(got, filepath.Base(p))
	}

	stem := strings.Repeat("b", 245)
	assert.Equal(t, []string{stem, stem[:243] + ".2"}, got)

	info, err := os.ReadFile(filepath.Join(trash.Dir(), "info", stem+".trashinfo"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "/"+name+"\n")
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short", 10))
	assert.Equal(t, "abc", truncateName("abcdef", 3))
	// "é" is two bytes and is never split
	assert.Equal(t, "a", truncateName("aé", 2))
}

func TestTrashWithoutInfoRecords(t *testing.T) {
	trash := NewTrash(filepath.Join(t.TempDir(), ".Trash"))
	trash.writeInfo = false
	src := filepath.Join(t.TempDir(), "folder")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "child"), 0o755))

	got, err := trash.Trash(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(trash.Dir(), "folder"), got)
	assert.True(t, IsDir(filepath.Join(got, "child")))
	assert.False(t, Exists(filepath.Join(trash.Dir(), "info")))
}

func TestTrashMissingPath(t *testing.T) {
	trash := newInfoTrash(t)

	_, err := trash.Trash(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, Exists(filepath.Join(trash.Dir(), "info", "nope.trashinfo")))
}
