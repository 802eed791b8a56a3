package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/julianstephens/salonlux/internal/storage"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		password string
		wantAddr string
		wantDB   int
		wantPass string
		wantErr  bool
	}{
		{"full url", "redis://localhost:6379/2", "", "localhost:6379", 2, "", false},
		{"bare host", "cache.internal:6380", "", "cache.internal:6380", 0, "", false},
		{"password override", "redis://:fromurl@localhost:6379/0", "fromkeyring", "localhost:6379", 0, "fromkeyring", false},
		{"password from url", "redis://:fromurl@localhost:6379/0", "", "localhost:6379", 0, "fromurl", false},
		{"empty", "  ", "", "", 0, "", true},
		{"bad scheme", "http://localhost:6379", "", "", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseOptions(tt.url, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if opts.Addr != tt.wantAddr || opts.DB != tt.wantDB || opts.Password != tt.wantPass {
				t.Errorf("ParseOptions() = addr %q db %d pass %q", opts.Addr, opts.DB, opts.Password)
			}
		})
	}
}

func TestNamespacedKeys(t *testing.T) {
	if got := namespaced("salonlux_appointments_v1"); got != "salonlux:salonlux_appointments_v1" {
		t.Errorf("namespaced() = %q", got)
	}
}

func TestLocation(t *testing.T) {
	b, err := New("redis://localhost:6379/3", "secret")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer b.Close()

	if got := b.Location(); got != "redis://localhost:6379/3" {
		t.Errorf("Location() = %q", got)
	}
}

func TestUnreachableServerIsNotNotFound(t *testing.T) {
	b, err := New("redis://127.0.0.1:1/0", "")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err = b.Get(ctx, "k")
	if err == nil {
		t.Fatal("Get() against a closed port should fail")
	}
	if errors.Is(err, storage.ErrNotFound) {
		t.Error("connection failure must not be reported as ErrNotFound")
	}
}

// Set SALONLUX_REDIS_TEST_URL to run against a real server.
func TestBackend_Integration(t *testing.T) {
	url := os.Getenv("SALONLUX_REDIS_TEST_URL")
	if url == "" {
		t.Skip("SALONLUX_REDIS_TEST_URL not set, skipping Redis integration test")
	}

	ctx := context.Background()
	b, err := New(url, "")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer b.Close()

	if err := b.Ping(ctx); err != nil {
		t.Fatalf("Ping() failed: %v", err)
	}

	key := "integration_test_key"
	t.Cleanup(func() { _ = b.Delete(context.Background(), key) })

	if _, err := b.Get(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get() of missing key error = %v, want ErrNotFound", err)
	}
	if err := b.Put(ctx, key, []byte(`[]`)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	got, err := b.Get(ctx, key)
	if err != nil || string(got) != `[]` {
		t.Fatalf("Get() = %s, %v", got, err)
	}
}
