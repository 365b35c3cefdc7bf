package local

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/felixgeelhaar/learnhub/internal/storage"
	"github.com/felixgeelhaar/learnhub/internal/storage/storagetest"
)

func TestNewStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	newDir := filepath.Join(tmpDir, "subdir", "nested")

	store, err := NewStore(newDir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if store.BasePath() != newDir {
		t.Errorf("BasePath() = %v, want %v", store.BasePath(), newDir)
	}

	info, err := os.Stat(newDir)
	if err != nil {
		t.Fatalf("directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory, got file")
	}
}

func TestStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store, _ := NewStore(t.TempDir())

	if err := store.Set(ctx, "learnhub-game-stats", json.RawMessage(`{"score":42}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "learnhub-game-stats")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	var v struct{ Score int }
	if err := json.Unmarshal(got, &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.Score != 42 {
		t.Errorf("Score = %d, want 42", v.Score)
	}
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStore_RejectsInvalidJSON(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	if err := store.Set(context.Background(), "k", json.RawMessage(`{broken`)); err == nil {
		t.Error("Set() with invalid JSON should fail")
	}
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	store, _ := NewStore(t.TempDir())

	_ = store.Set(ctx, "k", json.RawMessage(`1`))
	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after Remove error = %v, want ErrNotFound", err)
	}
	if err := store.Remove(ctx, "k"); err != nil {
		t.Errorf("second Remove() error = %v, want nil", err)
	}
}

func TestStore_PrefixedKeysUseSubdirectories(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, _ := NewStore(dir)

	ns := storage.WithPrefix(store, "alice")
	if err := ns.Set(ctx, "learnhub-game-stats", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "alice", "learnhub-game-stats.json")); err != nil {
		t.Errorf("expected file in namespace directory: %v", err)
	}

	keys, err := store.List("alice")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != "learnhub-game-stats" {
		t.Errorf("List() = %v, want [learnhub-game-stats]", keys)
	}
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store, _ := NewStore(t.TempDir())

	for _, key := range []string{"", "../outside", "/etc/passwd", `a\b`} {
		if err := store.Set(ctx, key, json.RawMessage(`1`)); err == nil {
			t.Errorf("Set(%q) should fail", key)
		}
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store, _ := NewStore(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "shared", json.RawMessage(`{"n":1}`))
			_, _ = store.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	if _, err := store.Get(ctx, "shared"); err != nil {
		t.Errorf("Get() error = %v", err)
	}
}

func TestStore_Conformance(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	storagetest.Run(t, store)
}
