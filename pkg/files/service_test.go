//go:build integration

package files

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/fastfile/fastfile/pkg/links"
	"github.com/fastfile/fastfile/pkg/models"
	"github.com/fastfile/fastfile/pkg/storage"
	"github.com/fastfile/fastfile/pkg/store"
)

// fixedQuota grants every tier the same byte limit.
type fixedQuota int64

func (q fixedQuota) Limit(tier string) int64 { return int64(q) }

type testEnv struct {
	svc    *Service
	links  *links.Service
	db     *store.GORMStore
	userID string
}

func newTestEnv(t *testing.T, quota int64) *testEnv {
	t.Helper()

	db, err := store.New(&store.Config{
		Type: store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{
			Path: ":memory:",
		},
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	resolver, err := storage.NewResolver(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create resolver: %v", err)
	}
	fs := storage.NewFilesystem()

	user := &models.User{
		Username:     "tester",
		Email:        "tester@example.com",
		PasswordHash: "x",
		Tier:         "free",
	}
	if _, err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	linkSvc := links.NewService(db, resolver, fs)
	return &testEnv{
		svc:    NewService(db, linkSvc, resolver, fs, fixedQuota(quota)),
		links:  linkSvc,
		db:     db,
		userID: user.ID,
	}
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	ctx := context.Background()

	t.Run("stores content and reports usage", func(t *testing.T) {
		info, err := env.svc.Upload(ctx, env.userID, "docs/a.txt", strings.NewReader("hello"), 5)
		if err != nil {
			t.Fatalf("failed to upload: %v", err)
		}
		if info.Path != "docs/a.txt" {
			t.Errorf("expected relative path docs/a.txt, got %s", info.Path)
		}
		if info.Size != 5 {
			t.Errorf("expected size 5, got %d", info.Size)
		}

		used, err := env.svc.Usage(ctx, env.userID)
		if err != nil {
			t.Fatalf("failed to compute usage: %v", err)
		}
		if used != 5 {
			t.Errorf("expected usage 5, got %d", used)
		}
	})

	t.Run("never overwrites", func(t *testing.T) {
		_, err := env.svc.Upload(ctx, env.userID, "docs/a.txt", strings.NewReader("other"), 5)
		if !errors.Is(err, models.ErrFileExists) {
			t.Errorf("expected ErrFileExists, got %v", err)
		}
	})

	t.Run("declared size over quota rejected before write", func(t *testing.T) {
		_, err := env.svc.Upload(ctx, env.userID, "big.bin", strings.NewReader("x"), 2<<20)
		if !errors.Is(err, models.ErrQuotaExceeded) {
			t.Errorf("expected ErrQuotaExceeded, got %v", err)
		}
	})

	t.Run("understated declaration rolled back after write", func(t *testing.T) {
		body := strings.Repeat("x", 1<<20)
		_, err := env.svc.Upload(ctx, env.userID, "liar.bin", strings.NewReader(body), 1)
		if !errors.Is(err, models.ErrQuotaExceeded) {
			t.Fatalf("expected ErrQuotaExceeded, got %v", err)
		}

		// The over-quota file must not survive.
		if _, err := env.svc.Stat(ctx, env.userID, "liar.bin"); !errors.Is(err, models.ErrFileNotFound) {
			t.Errorf("expected rolled-back file to be gone, got %v", err)
		}
	})
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	ctx := context.Background()

	if _, err := env.svc.Upload(ctx, env.userID, "file.txt", strings.NewReader("payload"), 7); err != nil {
		t.Fatalf("failed to upload: %v", err)
	}

	rc, stat, err := env.svc.Download(ctx, env.userID, "file.txt")
	if err != nil {
		t.Fatalf("failed to download: %v", err)
	}
	defer rc.Close()

	if stat.Size() != 7 {
		t.Errorf("expected size 7, got %d", stat.Size())
	}
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	if string(body) != "payload" {
		t.Errorf("expected payload, got %q", body)
	}
}

func TestListAndSearch(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	ctx := context.Background()

	t.Run("empty user root lists empty", func(t *testing.T) {
		infos, err := env.svc.List(ctx, env.userID, "")
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(infos) != 0 {
			t.Errorf("expected empty listing, got %d entries", len(infos))
		}
	})

	t.Run("lists files and directories", func(t *testing.T) {
		if _, err := env.svc.Upload(ctx, env.userID, "docs/report.txt", strings.NewReader("r"), 1); err != nil {
			t.Fatalf("failed to upload: %v", err)
		}
		if _, err := env.svc.Mkdir(ctx, env.userID, "photos"); err != nil {
			t.Fatalf("failed to mkdir: %v", err)
		}

		infos, err := env.svc.List(ctx, env.userID, "")
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(infos) != 2 {
			t.Errorf("expected 2 entries, got %d", len(infos))
		}
	})

	t.Run("search finds by substring", func(t *testing.T) {
		infos, err := env.svc.Search(ctx, env.userID, "report")
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if len(infos) != 1 || infos[0].Path != "docs/report.txt" {
			t.Errorf("expected docs/report.txt, got %v", infos)
		}
	})

	t.Run("empty search pattern rejected", func(t *testing.T) {
		_, err := env.svc.Search(ctx, env.userID, "  ")
		if !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestMkdir(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	ctx := context.Background()

	t.Run("creates directory", func(t *testing.T) {
		info, err := env.svc.Mkdir(ctx, env.userID, "a/b/c")
		if err != nil {
			t.Fatalf("failed to mkdir: %v", err)
		}
		if !info.Dir {
			t.Error("expected a directory")
		}
	})

	t.Run("existing path conflicts", func(t *testing.T) {
		if _, err := env.svc.Mkdir(ctx, env.userID, "a/b/c"); !errors.Is(err, models.ErrFileExists) {
			t.Errorf("expected ErrFileExists, got %v", err)
		}
	})

	t.Run("user root rejected", func(t *testing.T) {
		if _, err := env.svc.Mkdir(ctx, env.userID, "/"); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	ctx := context.Background()

	t.Run("removes file and its link", func(t *testing.T) {
		if _, err := env.svc.Upload(ctx, env.userID, "shared.txt", strings.NewReader("s"), 1); err != nil {
			t.Fatalf("failed to upload: %v", err)
		}
		link, err := env.links.CreateLink(ctx, env.userID, "shared.txt", true)
		if err != nil {
			t.Fatalf("failed to create link: %v", err)
		}

		if err := env.svc.Delete(ctx, env.userID, "shared.txt"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		if _, err := env.svc.Stat(ctx, env.userID, "shared.txt"); !errors.Is(err, models.ErrFileNotFound) {
			t.Errorf("expected file gone, got %v", err)
		}
		if _, err := env.links.Lookup(ctx, link.Token, env.userID, ""); !errors.Is(err, models.ErrLinkNotFound) {
			t.Errorf("expected link gone, got %v", err)
		}
	})

	t.Run("missing path not found", func(t *testing.T) {
		if err := env.svc.Delete(ctx, env.userID, "nope.txt"); !errors.Is(err, models.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("user root rejected", func(t *testing.T) {
		if err := env.svc.Delete(ctx, env.userID, ""); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("non-empty directory rejected", func(t *testing.T) {
		if _, err := env.svc.Upload(ctx, env.userID, "full/inner.txt", strings.NewReader("i"), 1); err != nil {
			t.Fatalf("failed to upload: %v", err)
		}
		dirLink, err := env.links.CreateLink(ctx, env.userID, "full", true)
		if err != nil {
			t.Fatalf("failed to create link: %v", err)
		}

		if err := env.svc.Delete(ctx, env.userID, "full"); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		// The directory, its contents, and its link all survive the refusal.
		if _, err := env.svc.Stat(ctx, env.userID, "full/inner.txt"); err != nil {
			t.Errorf("expected contents to survive, got %v", err)
		}
		if _, err := env.links.Lookup(ctx, dirLink.Token, env.userID, ""); err != nil {
			t.Errorf("expected directory link to survive, got %v", err)
		}
	})
}

func TestDeleteRecursive(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	ctx := context.Background()

	if _, err := env.svc.Upload(ctx, env.userID, "tree/a.txt", strings.NewReader("a"), 1); err != nil {
		t.Fatalf("failed to upload: %v", err)
	}
	if _, err := env.svc.Upload(ctx, env.userID, "tree/sub/b.txt", strings.NewReader("b"), 1); err != nil {
		t.Fatalf("failed to upload: %v", err)
	}
	nested, err := env.links.CreateLink(ctx, env.userID, "tree/sub/b.txt", true)
	if err != nil {
		t.Fatalf("failed to create link: %v", err)
	}

	if err := env.svc.DeleteRecursive(ctx, env.userID, "tree"); err != nil {
		t.Fatalf("failed to delete subtree: %v", err)
	}

	if _, err := env.svc.Stat(ctx, env.userID, "tree"); !errors.Is(err, models.ErrFileNotFound) {
		t.Errorf("expected subtree gone, got %v", err)
	}
	if _, err := env.links.Lookup(ctx, nested.Token, env.userID, ""); !errors.Is(err, models.ErrLinkNotFound) {
		t.Errorf("expected nested link gone, got %v", err)
	}

	used, err := env.svc.Usage(ctx, env.userID)
	if err != nil {
		t.Fatalf("failed to compute usage: %v", err)
	}
	if used != 0 {
		t.Errorf("expected usage 0 after subtree delete, got %d", used)
	}
}
