package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/salonlux/internal/storage"
)

func TestBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := New(filepath.Join(t.TempDir(), "data"))

	if _, err := b.Get(ctx, "salonlux_appointments_v1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get() on empty backend error = %v, want ErrNotFound", err)
	}

	if err := b.Put(ctx, "salonlux_appointments_v1", []byte(`[]`)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := b.Put(ctx, "salonlux_appointments_v1", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("second Put() failed: %v", err)
	}

	got, err := b.Get(ctx, "salonlux_appointments_v1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("Get() = %s, want latest value", got)
	}

	info, err := os.Stat(filepath.Join(b.Location(), "salonlux_appointments_v1.json"))
	if err != nil {
		t.Fatalf("stat storage file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 600", perm)
	}

	entries, _ := os.ReadDir(b.Location())
	if len(entries) != 1 {
		t.Errorf("data dir has %d entries, want only the snapshot (temp files leaked?)", len(entries))
	}
}

func TestBackendDelete(t *testing.T) {
	ctx := context.Background()
	b := New(t.TempDir())

	if err := b.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() of missing key returned error: %v", err)
	}

	if err := b.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := b.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := b.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestBackendRejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	b := New(t.TempDir())

	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		if err := b.Put(ctx, key, []byte("x")); err == nil {
			t.Errorf("Put(%q) should fail", key)
		}
	}
}

func TestBackendPing(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")

	if err := New(dir).Ping(ctx); err != nil {
		t.Fatalf("Ping() failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Ping() did not create data dir: %v", err)
	}

	notDir := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(notDir, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := New(notDir).Ping(ctx); err == nil {
		t.Error("Ping() on a regular file should fail")
	}
}
