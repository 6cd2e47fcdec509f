package clausewitz

import (
	"io"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirNonExistentPath(t *testing.T) {
	_, err := Dir("/this/path/does/not/exist/at/all")
	assert.Error(t, err)
}

func TestDirNotADirectory(t *testing.T) {
	_, err := Dir("testdata/batch/a.txt")
	assert.Error(t, err)
}

func TestMustDirPanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustDir("/this/path/does/not/exist") })
}

func TestDirListFiles(t *testing.T) {
	src := MustDir("testdata/batch")
	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "batch", "a.txt"),
		filepath.Join("testdata", "batch", "b.txt"),
		filepath.Join("testdata", "batch", "c.txt"),
	}, files)
}

func TestDirOpen(t *testing.T) {
	src := MustDir("testdata/batch")
	r, err := src.Open(filepath.Join("testdata", "batch", "a.txt"))
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	_ = r.Close()
	assert.Contains(t, string(data), "first")

	_, err = src.Open(filepath.Join("testdata", "game", "common", "countries", "colors.txt"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDirTreeListFiles(t *testing.T) {
	src, err := DirTree("testdata/game")
	require.NoError(t, err)
	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Len(t, files, 7)
	assert.Contains(t, files, filepath.Join("testdata", "game", "common", "countries", "colors.txt"))
}

func TestDirTreeExtensions(t *testing.T) {
	src, err := DirTree("testdata/game", WithExtensions(".gui"))
	require.NoError(t, err)
	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMustDirTreePanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustDirTree("/this/path/does/not/exist") })
}

func TestFSSource(t *testing.T) {
	fsys := fstest.MapFS{
		"common/a.txt":    {Data: []byte("a = { x = 1 }")},
		"common/b.TXT":    {Data: []byte("b = { x = 2 }")},
		"common/notes.md": {Data: []byte("# notes")},
	}
	src := FS("mod", fsys)
	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"mod:common/a.txt", "mod:common/b.TXT"}, files)

	r, err := src.Open("mod:common/a.txt")
	require.NoError(t, err)
	data, _ := io.ReadAll(r)
	_ = r.Close()
	assert.Equal(t, "a = { x = 1 }", string(data))

	_, err = src.Open("other:common/a.txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFilesSource(t *testing.T) {
	a := filepath.Join("testdata", "batch", "a.txt")
	src := Files(a)
	files, err := src.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{a}, files)

	_, err = src.Open(filepath.Join("testdata", "batch", "c.txt"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMultiSource(t *testing.T) {
	fsys := fstest.MapFS{"x.txt": {Data: []byte("x = { }")}}
	src := Multi(MustDir("testdata/batch"), FS("mem", fsys))
	files, err := src.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Equal(t, "mem:x.txt", files[3])

	r, err := src.Open("mem:x.txt")
	require.NoError(t, err)
	_ = r.Close()

	r, err = src.Open(files[0])
	require.NoError(t, err)
	_ = r.Close()
}
