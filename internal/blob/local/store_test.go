package local

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"filevault/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestStore_PutGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("hello"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, err := store.Get(ctx, ref)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Get = %q, want %q", data, "hello")
	}

	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, ref); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get after Delete: got %v, want ErrNotFound", err)
	}

	// Deleting again is fine
	if err := store.Delete(ctx, ref); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestStore_EmptyBlob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ref, err := store.Put(ctx, nil)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := store.Get(ctx, ref)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Get = %v, want empty", data)
	}
}

func TestStore_DistinctRefs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, _ := store.Put(ctx, []byte("same"))
	b, _ := store.Put(ctx, []byte("same"))
	if a == b {
		t.Fatalf("identical content got the same ref %s", a)
	}
}

func TestStore_ShardsAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ref, err := store.Put(context.Background(), []byte("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ref[:2], ref)); err != nil {
		t.Fatalf("blob not at sharded path: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, ref[:2]))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("shard holds %d entries, want 1", len(entries))
	}
}

func TestStore_RejectsMalformedRefs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, ref := range []string{"", "../../etc/passwd", "not-a-uuid"} {
		if _, err := store.Get(ctx, ref); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Get(%q): got %v, want ErrNotFound", ref, err)
		}
	}
}

func TestStore_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Put(ctx, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Put: got %v, want context.Canceled", err)
	}
}

func TestStore_PutAbandonedOnDeadline(t *testing.T) {
	store := newTestStore(t)

	gate := make(chan struct{})
	store.beforeCommit = func() { <-gate }

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ref, err := store.Put(ctx, []byte("stuck"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Put = %q, %v; want DeadlineExceeded", ref, err)
	}

	// Let the stuck write finish; the landed file must be cleaned up
	close(gate)
	deadline := time.Now().Add(2 * time.Second)
	for {
		n := countFiles(t, store.root)
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("%d blob files left behind after abandoned Put", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return n
}
