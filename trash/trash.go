// Package trash moves files into a freedesktop.org style trash directory so
// that a deletion can be recovered from the desktop's trash view.
package trash

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
)

const infoTimeFormat = "2006-01-02T15:04:05"

// ErrNotFound is returned when the file to trash does not exist
var ErrNotFound = errors.New("file not found")

// Trasher moves a file somewhere it can be recovered from
type Trasher interface {
	Trash(path string) error
}

// Dir is a trash directory holding files/ and info/ subdirectories. Files on
// another filesystem go to that volume's own $topdir/.Trash-$uid instead.
type Dir struct {
	fs     afero.Fs
	root   string
	uid    int
	now    func() time.Time
	topDir func(path string) (string, error)
}

// New returns a trash rooted at root on fs
func New(fs afero.Fs, root string) *Dir {
	d := &Dir{fs: fs, root: root, uid: os.Getuid(), now: time.Now}
	d.topDir = d.mountTop
	return d
}

// DefaultRoot returns $XDG_DATA_HOME/Trash, falling back to
// ~/.local/share/Trash.
func DefaultRoot() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "Trash"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "Trash"), nil
}

// Root returns the trash directory
func (d *Dir) Root() string {
	return d.root
}

// Trash moves path into the trash and records where it came from
func (d *Dir) Trash(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve %s: %w", path, err)
	}

	info, err := d.fs.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", absPath, ErrNotFound)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", absPath)
	}

	err = d.moveInto(d.root, absPath, absPath)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	// Rename cannot cross filesystems; use the trash on the file's volume.
	top, topErr := d.topDir(absPath)
	if topErr != nil {
		return fmt.Errorf("%w (no volume trash: %v)", err, topErr)
	}
	rel, relErr := filepath.Rel(top, absPath)
	if relErr != nil {
		return fmt.Errorf("%w (no volume trash: %v)", err, relErr)
	}
	return d.moveInto(d.volumeRoot(top), absPath, filepath.ToSlash(rel))
}

// volumeRoot returns the per-user trash directory at the top of a mounted
// volume.
func (d *Dir) volumeRoot(top string) string {
	return filepath.Join(top, fmt.Sprintf(".Trash-%d", d.uid))
}

// moveInto moves absPath into the trash at root. recorded is the Path value
// of the .trashinfo record: absolute for the home trash, relative to the
// volume top for a volume trash.
func (d *Dir) moveInto(root, absPath, recorded string) error {
	filesDir := filepath.Join(root, "files")
	infoDir := filepath.Join(root, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := d.fs.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create trash directory: %w", err)
		}
	}

	// The info file is created exclusively first; it reserves the name.
	name, infoPath, err := d.reserve(filesDir, infoDir, absPath, recorded)
	if err != nil {
		return err
	}

	if err := d.fs.Rename(absPath, filepath.Join(filesDir, name)); err != nil {
		_ = d.fs.Remove(infoPath)
		return fmt.Errorf("failed to move to trash: %w", err)
	}

	return nil
}

// mountTop walks up from path while the parent directory is on the same
// device, returning the mount point.
func (d *Dir) mountTop(path string) (string, error) {
	info, err := d.fs.Stat(path)
	if err != nil {
		return "", err
	}
	dev, ok := deviceOf(info)
	if !ok {
		return "", errors.New("device id unavailable")
	}

	top := filepath.Dir(path)
	for {
		parent := filepath.Dir(top)
		if parent == top {
			return top, nil
		}
		pinfo, err := d.fs.Stat(parent)
		if err != nil {
			return "", err
		}
		if pdev, ok := deviceOf(pinfo); !ok || pdev != dev {
			return top, nil
		}
		top = parent
	}
}

// reserve picks a name not yet used in the trash and writes its .trashinfo
// record. Conflicts get a numeric suffix: name_1.ext, name_2.ext, ...
func (d *Dir) reserve(filesDir, infoDir, origPath, recorded string) (string, string, error) {
	base := filepath.Base(origPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	name := base
	for counter := 1; ; counter++ {
		_, err := d.fs.Stat(filepath.Join(filesDir, name))
		if err != nil && !os.IsNotExist(err) {
			return "", "", fmt.Errorf("failed to inspect trash: %w", err)
		}
		if err != nil {
			infoPath := filepath.Join(infoDir, name+".trashinfo")
			f, err := d.fs.OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
			if err == nil {
				if err := d.writeInfo(f, recorded); err != nil {
					_ = d.fs.Remove(infoPath)
					return "", "", err
				}
				return name, infoPath, nil
			}
			if !os.IsExist(err) {
				return "", "", fmt.Errorf("failed to write trash info: %w", err)
			}
		}
		name = fmt.Sprintf("%s_%d%s", stem, counter, ext)
	}
}

func (d *Dir) writeInfo(f afero.File, recorded string) error {
	defer f.Close()

	escaped := (&url.URL{Path: recorded}).EscapedPath()
	content := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		escaped, d.now().Format(infoTimeFormat))
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to write trash info: %w", err)
	}
	return nil
}
