// Package catalog builds a flat inventory of the regular files below a root.
package catalog

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileRecord describes one regular file found during a walk
type FileRecord struct {
	Dir  string // Containing directory
	Name string // Base name
	Path string // Full path, unique within a run
	Size int64  // Size in bytes
}

// Stats reports what a walk saw besides the records it kept
type Stats struct {
	Visited int // Regular files seen
	Skipped int // Entries dropped because they could not be read
}

// Build walks root on fsys and returns a record for every regular file whose
// size can be read. Unreadable entries are skipped without aborting the walk.
// The only error returned is ctx's.
func Build(ctx context.Context, fsys afero.Fs, root string) ([]FileRecord, Stats, error) {
	var (
		records []FileRecord
		stats   Stats
	)

	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			stats.Skipped++
			if info != nil && info.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}

		// Walk hands us the lstat result. Stat follows links, so a broken
		// link or a file that vanished since the directory was read is
		// dropped here.
		fi, err := fsys.Stat(path)
		if err != nil {
			stats.Skipped++
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		stats.Visited++

		records = append(records, FileRecord{
			Dir:  filepath.Dir(path),
			Name: info.Name(),
			Path: path,
			Size: fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	return records, stats, nil
}
