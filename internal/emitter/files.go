// Package emitter holds what the document emitters share: the file plan
// and atomic writes.
package emitter

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// PlannedFile describes a file an emitter writes or would write.
// RelPath is relative to the directory of the output document, or "-"
// for standard output.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
	Exists  bool // set for files that are kept rather than overwritten
}

// Result lists the planned files, the document first.
type Result struct {
	Planned []PlannedFile
}

// ToStdout reports whether out selects standard output.
func ToStdout(out string) bool {
	out = strings.TrimSpace(out)
	return out == "" || out == "-"
}

// WriteAtomic writes content to a temp file beside path and renames it into
// place, creating parent directories as needed.
func WriteAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "mkdir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp for %s", path)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "write temp for %s", path)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, "close temp for %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		cleanup()
		return errors.Wrapf(err, "chmod %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		cleanup()
		return errors.Wrapf(err, "rename %s", path)
	}
	return nil
}
