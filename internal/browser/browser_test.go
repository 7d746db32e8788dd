package browser

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.Headless {
		t.Error("Expected headless to be true by default")
	}

	if opts.Timeout != 30*time.Second {
		t.Errorf("Expected timeout to be 30s, got %v", opts.Timeout)
	}

	if opts.ViewportWidth != 1920 || opts.ViewportHeight != 1080 {
		t.Errorf("Expected viewport to be 1920x1080, got %dx%d", opts.ViewportWidth, opts.ViewportHeight)
	}

	if opts.Locale != "en-US" {
		t.Errorf("Expected locale to be en-US, got %s", opts.Locale)
	}

	if _, ok := opts.Session.(NoopSession); !ok {
		t.Errorf("Expected default session store to be NoopSession, got %T", opts.Session)
	}
}

func TestFileSessionStatePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session", "state.json")

	session, err := NewFileSession(path)
	if err != nil {
		t.Fatalf("NewFileSession failed: %v", err)
	}

	if _, ok := session.StatePath(); ok {
		t.Error("Expected no usable snapshot before anything was saved")
	}

	if err := os.WriteFile(path, []byte(nil), 0644); err != nil {
		t.Fatalf("writing empty snapshot: %v", err)
	}
	if _, ok := session.StatePath(); ok {
		t.Error("Expected an empty snapshot file to be treated as unusable")
	}

	if err := os.WriteFile(path, []byte(`{"cookies":[]}`), 0644); err != nil {
		t.Fatalf("writing snapshot: %v", err)
	}
	got, ok := session.StatePath()
	if !ok {
		t.Fatal("Expected a non-empty snapshot to be usable")
	}
	if got != path {
		t.Errorf("Expected state path %s, got %s", path, got)
	}
}
