// Package atomicfile writes files via a temporary sibling and rename, so a
// crash mid-write never leaves a partially written file at the target path.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// WriteFile writes data to path atomically with the given permissions. The
// data is first written to a temporary file in the same directory, synced,
// and then moved over the target in one rename.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "atomicfile: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrap(err, "atomicfile: create temp file")
	}
	tmpName := tmp.Name()

	// Any failure below must not leave the temp file behind.
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return eris.Wrap(err, "atomicfile: chmod temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return eris.Wrap(err, "atomicfile: write temp file")
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return eris.Wrap(err, "atomicfile: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "atomicfile: close temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "atomicfile: rename to %s", path)
	}
	return nil
}
