package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStore_PutDelete(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStore(root)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	p, err := s.Put(ctx, "abc_id.pdf", []byte("hello"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if p != filepath.Join(root, "abc_id.pdf") {
		t.Fatalf("path = %s", p)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "hello" {
		t.Fatalf("read back: %q %v", b, err)
	}
	if _, err := os.Stat(p + ".part"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}

	if _, err := s.Put(ctx, "abc_id.pdf", []byte("other")); err == nil {
		t.Fatalf("overwrite must fail")
	}
	b, _ = os.ReadFile(p)
	if string(b) != "hello" {
		t.Fatalf("existing blob modified: %q", b)
	}

	if err := s.Delete(ctx, "abc_id.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "abc_id.pdf"); err != nil {
		t.Fatalf("Delete missing should be nil, got %v", err)
	}
}

func TestLocalStore_InvalidKeys(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	for _, k := range []string{"", ".", "..", "../x", `a\b`, "dir/file"} {
		if _, err := s.Put(context.Background(), k, []byte("x")); err == nil {
			t.Errorf("Put(%q) should fail", k)
		}
	}
}

func TestLocalStore_CanceledContext(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Put(ctx, "k", []byte("x")); err == nil {
		t.Fatalf("expected context error")
	}
}
