// Package lock persists the monitor's pid record.
//
// Every read and every write takes an exclusive flock(2) on the record file
// for the duration of that single operation only, so two vu1 invocations
// never interleave on the record. The lock is not held between operations.
package lock

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/rileyhilliard/vu1/internal/errors"
)

// DefaultFile is the record path used when none is configured.
const DefaultFile = "monitoring.lock"

// File is a pid record on disk.
type File struct {
	path string
}

// NewFile returns the record at path. Relative paths resolve against the
// working directory.
func NewFile(path string) *File {
	if path == "" {
		path = DefaultFile
	}
	return &File{path: path}
}

// Path returns the record's file path.
func (f *File) Path() string {
	return f.path
}

// Read loads the record. A missing file reads as an empty record.
func (f *File) Read() (Record, error) {
	fh, err := os.Open(f.path)
	if os.IsNotExist(err) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Can't open lock file %s", f.path),
			"Check the file permissions or remove it")
	}
	defer fh.Close()

	unlock, err := flock(fh)
	if err != nil {
		return Record{}, err
	}
	defer unlock()

	data, err := io.ReadAll(fh)
	if err != nil {
		return Record{}, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Can't read lock file %s", f.path),
			"Check the file permissions or remove it")
	}

	rec, err := ParseRecord(data)
	if err != nil {
		return Record{}, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Lock file %s is corrupt", f.path),
			"Remove it and run 'vu1 start' again")
	}
	return rec, nil
}

// Write replaces the record.
func (f *File) Write(rec Record) error {
	data, err := rec.Marshal()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrLock,
				fmt.Sprintf("Can't create directory for lock file %s", f.path),
				"Check the lock.file setting in vu1.yaml")
		}
	}

	fh, err := os.OpenFile(f.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Can't open lock file %s", f.path),
			"Check the file permissions or remove it")
	}
	defer fh.Close()

	unlock, err := flock(fh)
	if err != nil {
		return err
	}
	defer unlock()

	// Truncate only once we hold the lock so readers never see a half record.
	if err := fh.Truncate(0); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock, "Can't truncate lock file", "")
	}
	if _, err := fh.WriteAt(data, 0); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock, "Can't write lock file", "")
	}
	return fh.Sync()
}

// Clear writes an empty record.
func (f *File) Clear() error {
	return f.Write(Record{})
}

// flock blocks until fh is exclusively locked and returns the unlock func.
func flock(fh *os.File) (func(), error) {
	for {
		err := unix.Flock(int(fh.Fd()), unix.LOCK_EX)
		if err == nil {
			break
		}
		if err == unix.EINTR {
			continue
		}
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Can't lock %s", fh.Name()),
			"Another vu1 command may be stuck; try again")
	}
	return func() {
		_ = unix.Flock(int(fh.Fd()), unix.LOCK_UN)
	}, nil
}
