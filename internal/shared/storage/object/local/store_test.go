package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveWithKeyOverwrites(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	for _, body := range []string{"first version", "second"} {
		n, err := store.SaveWithKey(context.Background(), "out/output.json", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("SaveWithKey: %v", err)
		}
		if n != int64(len(body)) {
			t.Fatalf("expected %d bytes, got %d", len(body), n)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "out", "output.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "second" {
		t.Fatalf("expected overwrite, got %q", data)
	}
}

func TestSaveWithKeyRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	for _, key := range []string{"../escape.json", "/abs.json", ""} {
		if _, err := store.SaveWithKey(context.Background(), key, "application/json", strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestLocation(t *testing.T) {
	store := New("data")
	if got := store.Location("output.json"); got != filepath.Join("data", "output.json") {
		t.Fatalf("unexpected location %q", got)
	}
}
