package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fastfile/fastfile/pkg/models"
)

func TestSave(t *testing.T) {
	fs := NewFilesystem()
	root := t.TempDir()

	t.Run("creates file and parents", func(t *testing.T) {
		path := filepath.Join(root, "a", "b", "file.txt")
		n, err := fs.Save(path, strings.NewReader("content"))
		if err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if n != int64(len("content")) {
			t.Errorf("expected %d bytes written, got %d", len("content"), n)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read back: %v", err)
		}
		if string(data) != "content" {
			t.Errorf("expected 'content', got %q", data)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(root, "a", "b", "file.txt")
		if _, err := fs.Save(path, strings.NewReader("other")); !errors.Is(err, models.ErrFileExists) {
			t.Errorf("expected ErrFileExists, got %v", err)
		}
	})
}

func TestStatAndOpen(t *testing.T) {
	fs := NewFilesystem()
	root := t.TempDir()
	path := filepath.Join(root, "file.txt")
	if _, err := fs.Save(path, strings.NewReader("data")); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	t.Run("stat existing file", func(t *testing.T) {
		info, err := fs.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat: %v", err)
		}
		if info.Size() != 4 {
			t.Errorf("expected size 4, got %d", info.Size())
		}
	})

	t.Run("stat missing file", func(t *testing.T) {
		if _, err := fs.Stat(filepath.Join(root, "nope")); !errors.Is(err, models.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("open streams content", func(t *testing.T) {
		file, info, err := fs.Open(path)
		if err != nil {
			t.Fatalf("failed to open: %v", err)
		}
		defer file.Close()

		if info.Size() != 4 {
			t.Errorf("expected size 4, got %d", info.Size())
		}
		data, err := io.ReadAll(file)
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if string(data) != "data" {
			t.Errorf("expected 'data', got %q", data)
		}
	})

	t.Run("open directory reports not found", func(t *testing.T) {
		if _, _, err := fs.Open(root); !errors.Is(err, models.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound for directory, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	fs := NewFilesystem()
	root := t.TempDir()

	t.Run("removes file", func(t *testing.T) {
		path := filepath.Join(root, "file.txt")
		if _, err := fs.Save(path, strings.NewReader("x")); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := fs.Delete(path); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if fs.Exists(path) {
			t.Error("expected file to be gone")
		}
	})

	t.Run("missing file not found", func(t *testing.T) {
		if err := fs.Delete(filepath.Join(root, "nope")); !errors.Is(err, models.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("non-empty directory rejected", func(t *testing.T) {
		dir := filepath.Join(root, "full")
		if _, err := fs.Save(filepath.Join(dir, "child"), strings.NewReader("x")); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := fs.Delete(dir); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if !fs.Exists(filepath.Join(dir, "child")) {
			t.Error("expected directory contents to survive")
		}
	})
}

func TestDeleteRecursive(t *testing.T) {
	fs := NewFilesystem()
	root := t.TempDir()
	dir := filepath.Join(root, "tree")
	if _, err := fs.Save(filepath.Join(dir, "sub", "file.txt"), strings.NewReader("x")); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	if err := fs.DeleteRecursive(dir); err != nil {
		t.Fatalf("failed to delete recursively: %v", err)
	}
	if fs.Exists(dir) {
		t.Error("expected subtree to be gone")
	}

	if err := fs.DeleteRecursive(dir); !errors.Is(err, models.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	fs := NewFilesystem()
	root := t.TempDir()
	for _, name := range []string{"report.pdf", "notes.txt", "sub/report-final.pdf"} {
		if _, err := fs.Save(filepath.Join(root, filepath.FromSlash(name)), strings.NewReader("x")); err != nil {
			t.Fatalf("failed to save %s: %v", name, err)
		}
	}

	matches, err := fs.Search(root, "report")
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 matches, got %d: %v", len(matches), matches)
	}

	matches, err = fs.Search(root, "sub")
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	// Directories match by name too.
	if len(matches) != 1 {
		t.Errorf("expected 1 match, got %d: %v", len(matches), matches)
	}

	if _, err := fs.Search(filepath.Join(root, "missing"), "x"); !errors.Is(err, models.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestUsageBytes(t *testing.T) {
	fs := NewFilesystem()
	root := t.TempDir()

	t.Run("missing root counts as zero", func(t *testing.T) {
		used, err := fs.UsageBytes(filepath.Join(root, "nobody"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if used != 0 {
			t.Errorf("expected 0, got %d", used)
		}
	})

	t.Run("sums file sizes across subtree", func(t *testing.T) {
		if _, err := fs.Save(filepath.Join(root, "a.txt"), strings.NewReader("12345")); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if _, err := fs.Save(filepath.Join(root, "sub", "b.txt"), strings.NewReader("123")); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		used, err := fs.UsageBytes(root)
		if err != nil {
			t.Fatalf("failed to compute usage: %v", err)
		}
		if used != 8 {
			t.Errorf("expected 8, got %d", used)
		}
	})
}
