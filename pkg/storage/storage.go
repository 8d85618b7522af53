package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fastfile/fastfile/pkg/models"
)

// FileInfo describes one filesystem entry in API-facing terms. Path is
// user-relative and slash-separated.
type FileInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	Dir     bool      `json:"dir"`
	ModTime time.Time `json:"mod_time"`
}

// Filesystem performs the disk operations behind the file and link services.
// All paths it accepts are absolute, already validated by the Resolver.
type Filesystem struct{}

// NewFilesystem creates a Filesystem.
func NewFilesystem() *Filesystem {
	return &Filesystem{}
}

// Exists reports whether the path refers to an existing entry.
func (f *Filesystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Stat returns metadata for one entry, or ErrFileNotFound.
func (f *Filesystem) Stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.ErrFileNotFound
		}
		return nil, err
	}
	return info, nil
}

// MkdirAll creates the directory and any missing parents.
func (f *Filesystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// Save streams content to a new file at path, creating parent directories.
// Fails with ErrFileExists if the path is already taken.
func (f *Filesystem) Save(path string, content io.Reader) (int64, error) {
	if f.Exists(path) {
		return 0, models.ErrFileExists
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create parent directory: %w", err)
	}

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, models.ErrFileExists
		}
		return 0, err
	}

	n, err := io.Copy(dst, content)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}

// Open opens a regular file for reading, or ErrFileNotFound. Directories are
// reported as not-found: they have no byte stream to serve.
func (f *Filesystem) Open(path string) (*os.File, os.FileInfo, error) {
	info, err := f.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if info.IsDir() {
		return nil, nil, models.ErrFileNotFound
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, models.ErrFileNotFound
		}
		return nil, nil, err
	}
	return file, info, nil
}

// Delete removes a single file or an empty directory. A directory that
// still has children fails with ErrInvalidArgument; removing it takes an
// explicit recursive delete.
func (f *Filesystem) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.ErrFileNotFound
		}
		// The not-empty errno differs across platforms, so check directly.
		if dirNotEmpty(path) {
			return fmt.Errorf("%w: directory is not empty, delete it recursively", models.ErrInvalidArgument)
		}
		return err
	}
	return nil
}

// dirNotEmpty reports whether path is a directory with at least one entry.
func dirNotEmpty(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) > 0
}

// DeleteRecursive removes a directory subtree (or a single file).
func (f *Filesystem) DeleteRecursive(path string) error {
	if !f.Exists(path) {
		return models.ErrFileNotFound
	}
	return os.RemoveAll(path)
}

// List returns the immediate children of a directory.
func (f *Filesystem) List(path string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.ErrFileNotFound
		}
		return nil, err
	}
	return entries, nil
}

// Search walks the subtree under root and returns entries whose name
// contains the given substring. The root itself is never a match.
func (f *Filesystem) Search(root, name string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if strings.Contains(d.Name(), name) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.ErrFileNotFound
		}
		return nil, err
	}
	return matches, nil
}

// UsageBytes sums the sizes of all regular files under root. A missing root
// counts as zero usage: the user simply has not uploaded anything yet.
func (f *Filesystem) UsageBytes(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	return total, nil
}
