package durable

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

// File is the write side of a file opened by FS.Create.
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// FS is the set of filesystem primitives the store relies on. It exists so
// tests can inject failures at individual steps.
type FS interface {
	// MkdirAll creates a directory and all missing parents.
	MkdirAll(path string, perm fs.FileMode) error

	// Create opens path for writing, truncating it if it exists.
	Create(path string) (File, error)

	// Open opens path for reading.
	Open(path string) (io.ReadCloser, error)

	// Stat returns file information.
	Stat(path string) (fs.FileInfo, error)

	// Rename moves oldPath to newPath.
	Rename(oldPath, newPath string) error

	// Remove deletes a file.
	Remove(path string) error
}

// OSFS implements FS on the host file system.
type OSFS struct{}

// MkdirAll implements FS.
func (OSFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Create implements FS.
func (OSFS) Create(path string) (File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
}

// Open implements FS.
func (OSFS) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Stat implements FS.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Rename implements FS.
func (OSFS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// Remove implements FS.
func (OSFS) Remove(path string) error {
	return os.Remove(path)
}

func exists(fsys FS, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
