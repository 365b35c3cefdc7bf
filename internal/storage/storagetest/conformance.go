// Package storagetest holds the behaviour every storage.Store backend must
// share, run from each backend's tests.
package storagetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/felixgeelhaar/learnhub/internal/storage"
)

// Run exercises s against the storage.Store contract. Keys are namespaced
// with the test name so backends may be shared between tests.
func Run(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()
	ns := storage.WithPrefix(s, "conformance-"+sanitize(t.Name()))

	t.Run("missing key", func(t *testing.T) {
		if _, err := ns.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := ns.Set(ctx, "doc", json.RawMessage(`{"score":3,"name":"ada"}`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := ns.Get(ctx, "doc")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		var v struct {
			Score int    `json:"score"`
			Name  string `json:"name"`
		}
		if err := json.Unmarshal(got, &v); err != nil {
			t.Fatalf("stored value is not JSON: %v", err)
		}
		if v.Score != 3 || v.Name != "ada" {
			t.Errorf("Get() = %+v, want score 3 name ada", v)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		_ = ns.Set(ctx, "counter", json.RawMessage(`1`))
		_ = ns.Set(ctx, "counter", json.RawMessage(`2`))
		got, err := ns.Get(ctx, "counter")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		var n int
		_ = json.Unmarshal(got, &n)
		if n != 2 {
			t.Errorf("Get() = %d, want 2", n)
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		_ = ns.Set(ctx, "gone", json.RawMessage(`[]`))
		if err := ns.Remove(ctx, "gone"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if _, err := ns.Get(ctx, "gone"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Get() after Remove error = %v, want ErrNotFound", err)
		}
		if err := ns.Remove(ctx, "gone"); err != nil {
			t.Errorf("second Remove() error = %v", err)
		}
	})

	t.Run("concurrent writers", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("w%d", i)
				if err := ns.Set(ctx, key, json.RawMessage(fmt.Sprintf(`%d`, i))); err != nil {
					t.Errorf("Set(%s) error = %v", key, err)
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < 10; i++ {
			if _, err := ns.Get(ctx, fmt.Sprintf("w%d", i)); err != nil {
				t.Errorf("Get(w%d) error = %v", i, err)
			}
		}
	})
}

func sanitize(name string) string {
	out := []byte(name)
	for i, c := range out {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
			out[i] = '-'
		}
	}
	return string(out)
}
