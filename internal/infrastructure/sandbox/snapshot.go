package sandbox

import (
	"io/fs"
	"path/filepath"
	"sort"
	"time"
)

// fileState is the per-path fingerprint used for before/after diffing.
type fileState struct {
	size    int64
	modTime time.Time
	mode    fs.FileMode
}

// snapshotDir fingerprints every path under root. Walk errors are skipped:
// a file the sandboxed process deleted mid-walk simply shows up in the diff.
func snapshotDir(root string) map[string]fileState {
	states := map[string]fileState{}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		states[rel] = fileState{
			size:    info.Size(),
			modTime: info.ModTime(),
			mode:    info.Mode(),
		}
		return nil
	})
	return states
}

// diffSnapshots returns sorted created/modified/deleted path lists.
func diffSnapshots(before, after map[string]fileState) (created, modified, deleted []string) {
	for path, state := range after {
		prev, existed := before[path]
		switch {
		case !existed:
			created = append(created, path)
		case prev != state:
			modified = append(modified, path)
		}
	}
	for path := range before {
		if _, exists := after[path]; !exists {
			deleted = append(deleted, path)
		}
	}
	sort.Strings(created)
	sort.Strings(modified)
	sort.Strings(deleted)
	return created, modified, deleted
}
