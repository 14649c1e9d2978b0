package trash

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrash(t *testing.T) (afero.Fs, *Dir) {
	t.Helper()
	fs := afero.NewMemMapFs()
	d := New(fs, "/home/u/.local/share/Trash")
	d.now = func() time.Time { return time.Date(2024, 8, 31, 22, 32, 8, 0, time.UTC) }
	return fs, d
}

func TestTrashMovesFileAndWritesInfo(t *testing.T) {
	fs, d := newTestTrash(t)
	require.NoError(t, fs.MkdirAll("/data/photos", 0755))
	require.NoError(t, afero.WriteFile(fs, "/data/photos/my clip.mp4", []byte("abc"), 0644))

	require.NoError(t, d.Trash("/data/photos/my clip.mp4"))

	exists, err := afero.Exists(fs, "/data/photos/my clip.mp4")
	require.NoError(t, err)
	assert.False(t, exists)

	content, err := afero.ReadFile(fs, filepath.Join(d.Root(), "files", "my clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(content))

	info, err := afero.ReadFile(fs, filepath.Join(d.Root(), "info", "my clip.mp4.trashinfo"))
	require.NoError(t, err)
	assert.Equal(t, "[Trash Info]\nPath=/data/photos/my%20clip.mp4\nDeletionDate=2024-08-31T22:32:08\n", string(info))
}

func TestTrashNameConflict(t *testing.T) {
	fs, d := newTestTrash(t)
	for _, dir := range []string{"/a", "/b", "/c"} {
		require.NoError(t, fs.MkdirAll(dir, 0755))
		require.NoError(t, afero.WriteFile(fs, dir+"/x.txt", []byte(dir), 0644))
		require.NoError(t, d.Trash(dir+"/x.txt"))
	}

	for name, want := range map[string]string{"x.txt": "/a", "x_1.txt": "/b", "x_2.txt": "/c"} {
		content, err := afero.ReadFile(fs, filepath.Join(d.Root(), "files", name))
		require.NoError(t, err, name)
		assert.Equal(t, want, string(content))

		ok, err := afero.Exists(fs, filepath.Join(d.Root(), "info", name+".trashinfo"))
		require.NoError(t, err)
		assert.True(t, ok, name)
	}
}

func TestTrashMissingFile(t *testing.T) {
	_, d := newTestTrash(t)

	err := d.Trash("/does/not/exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrashDirectoryRefused(t *testing.T) {
	fs, d := newTestTrash(t)
	require.NoError(t, fs.MkdirAll("/dir", 0755))

	assert.Error(t, d.Trash("/dir"))
}

type renameFailFs struct {
	afero.Fs
}

func (renameFailFs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: os.ErrPermission}
}

func TestTrashRenameFailureCleansInfo(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/f.bin", []byte("x"), 0644))
	d := New(renameFailFs{base}, "/trash")

	err := d.Trash("/f.bin")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)

	ok, err := afero.Exists(base, "/trash/info/f.bin.trashinfo")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = afero.Exists(base, "/f.bin")
	require.NoError(t, err)
	assert.True(t, ok)
}

// crossDeviceFs refuses renames into one directory tree the way the kernel
// refuses a rename across mounts.
type crossDeviceFs struct {
	afero.Fs
	foreign string
}

func (c crossDeviceFs) Rename(oldname, newname string) error {
	if strings.HasPrefix(newname, c.foreign+"/") {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: syscall.EXDEV}
	}
	return c.Fs.Rename(oldname, newname)
}

func TestTrashCrossDeviceUsesVolumeTrash(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/media/camera/DCIM/AAAA0001.MP4", []byte("clip"), 0644))

	home := "/home/u/.local/share/Trash"
	d := New(crossDeviceFs{Fs: base, foreign: home}, home)
	d.uid = 1000
	d.now = func() time.Time { return time.Date(2024, 8, 31, 22, 32, 8, 0, time.UTC) }
	d.topDir = func(string) (string, error) { return "/media/camera", nil }

	require.NoError(t, d.Trash("/media/camera/DCIM/AAAA0001.MP4"))

	ok, err := afero.Exists(base, "/media/camera/DCIM/AAAA0001.MP4")
	require.NoError(t, err)
	assert.False(t, ok)

	content, err := afero.ReadFile(base, "/media/camera/.Trash-1000/files/AAAA0001.MP4")
	require.NoError(t, err)
	assert.Equal(t, "clip", string(content))

	info, err := afero.ReadFile(base, "/media/camera/.Trash-1000/info/AAAA0001.MP4.trashinfo")
	require.NoError(t, err)
	assert.Equal(t, "[Trash Info]\nPath=DCIM/AAAA0001.MP4\nDeletionDate=2024-08-31T22:32:08\n", string(info))

	// Nothing is left behind in the home trash.
	ok, err = afero.Exists(base, filepath.Join(home, "info", "AAAA0001.MP4.trashinfo"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrashCrossDeviceWithoutVolumeTop(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/media/usb/f.bin", []byte("x"), 0644))

	// MemMapFs reports no device ids, so the mount top cannot be found.
	home := "/trash"
	d := New(crossDeviceFs{Fs: base, foreign: home}, home)

	err := d.Trash("/media/usb/f.bin")
	require.Error(t, err)
	assert.ErrorIs(t, err, syscall.EXDEV)

	ok, err := afero.Exists(base, "/media/usb/f.bin")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMountTopOnOsFs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("device ids are unix only")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "f.bin")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	d := New(afero.NewOsFs(), filepath.Join(dir, "Trash"))
	top, err := d.mountTop(path)
	require.NoError(t, err)
	assert.True(t, path == top || strings.HasPrefix(path, strings.TrimSuffix(top, "/")+"/"), top)
}

func TestDefaultRoot(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	root, err := DefaultRoot()
	require.NoError(t, err)
	assert.Equal(t, "/xdg/Trash", root)

	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/someone")
	root, err = DefaultRoot()
	require.NoError(t, err)
	assert.Equal(t, "/home/someone/.local/share/Trash", root)
}
