package library

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRelativeJoinsRoot(t *testing.T) {
	f := NewFiles("/srv/library")

	got, err := f.Resolve("albums/a.mp4")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/library", "albums", "a.mp4"), got)
}

func TestResolveAbsolutePassThrough(t *testing.T) {
	f := NewFiles("/srv/library")

	got, err := f.Resolve("/mnt/other/a.mp4")

	require.NoError(t, err)
	assert.Equal(t, "/mnt/other/a.mp4", got)
}

func TestResolveRejectsTraversal(t *testing.T) {
	f := NewFiles("/srv/library")

	_, err := f.Resolve("../../etc/passwd")

	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestResolveAllowsDotSegmentsInsideRoot(t *testing.T) {
	f := NewFiles("/srv/library")

	got, err := f.Resolve("albums/../a.mp4")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/library", "a.mp4"), got)
}

func TestOpenReadsFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))
	f := NewFiles(root)

	file, err := f.Open("a.txt")
	require.NoError(t, err)
	defer file.Close()

	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestOpenMissingFileIsNotExist(t *testing.T) {
	f := NewFiles(t.TempDir())

	_, err := f.Open("missing.txt")

	assert.ErrorIs(t, err, fs.ErrNotExist)
}
