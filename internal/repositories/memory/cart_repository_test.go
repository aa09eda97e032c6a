package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ramitaha13/KamelStore/internal/repositories"
)

func TestCartRepositorySaveLoadRemove(t *testing.T) {
	repo := NewCartRepository()
	ctx := context.Background()

	if got, err := repo.Load(ctx, "s1", "yourcart"); err != nil || got != nil {
		t.Fatalf("expected empty load, got %q, %v", got, err)
	}
	if err := repo.Save(ctx, "s1", "yourcart", []byte(`[{"id":"P1"}]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load(ctx, "s1", "yourcart")
	if err != nil || string(got) != `[{"id":"P1"}]` {
		t.Fatalf("unexpected load %q, %v", got, err)
	}
	if other, _ := repo.Load(ctx, "s2", "yourcart"); other != nil {
		t.Fatalf("namespaces must be isolated, got %q", other)
	}

	got[0] = 'X'
	again, _ := repo.Load(ctx, "s1", "yourcart")
	if again[0] != '[' {
		t.Fatalf("load must return a copy")
	}

	if err := repo.Remove(ctx, "s1", "yourcart", "Yourinvitation"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got, _ := repo.Load(ctx, "s1", "yourcart"); got != nil {
		t.Fatalf("expected removed key, got %q", got)
	}
}

func TestCartRepositoryEnforcesQuota(t *testing.T) {
	repo := NewCartRepository(WithQuota(8))

	err := repo.Save(context.Background(), "s1", "yourcart", []byte("0123456789"))
	if !errors.Is(err, repositories.ErrCartQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	var storageErr *repositories.CartStorageError
	if !errors.As(err, &storageErr) || storageErr.Size != 10 || storageErr.Limit != 8 {
		t.Fatalf("unexpected error details %+v", storageErr)
	}
}

func TestCartRepositoryExpiresSessionScopedValues(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	repo := NewCartRepository(WithTTL(30*time.Minute), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if err := repo.Save(ctx, "s1", "yourcart", []byte("[]")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	now = now.Add(29 * time.Minute)
	if got, _ := repo.Load(ctx, "s1", "yourcart"); got == nil {
		t.Fatalf("expected value before expiry")
	}
	now = now.Add(time.Minute)
	if got, _ := repo.Load(ctx, "s1", "yourcart"); got != nil {
		t.Fatalf("expected value to expire, got %q", got)
	}
}

func TestCartRepositoryRejectsBlankKeys(t *testing.T) {
	repo := NewCartRepository()
	if err := repo.Save(context.Background(), " ", "yourcart", nil); err == nil {
		t.Fatalf("expected invalid namespace error")
	}
	if _, err := repo.Load(context.Background(), "s1", ""); err == nil {
		t.Fatalf("expected invalid key error")
	}
}
