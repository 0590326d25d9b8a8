package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestStoreListRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "2018", "11", "events-1.json"), `{"a":1}`)
	writeFile(t, filepath.Join(root, "2018", "12", "events-2.json"), `{"a":2}`)
	writeFile(t, filepath.Join(root, "README.md"), "not data")

	objs, err := NewStore(root).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("got %d objects, want 2", len(objs))
	}
	// Sorted by path: 11 before 12.
	if filepath.Base(objs[0].Name()) != "events-1.json" {
		t.Errorf("first object = %s, want events-1.json", objs[0].Name())
	}
}

func TestStoreListMissingRoot(t *testing.T) {
	objs, err := NewStore(filepath.Join(t.TempDir(), "nope")).List(context.Background())
	if err != nil {
		t.Fatalf("List on missing root: %v", err)
	}
	if len(objs) != 0 {
		t.Fatalf("got %d objects, want 0", len(objs))
	}
}

func TestObjectOpen(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "one.json"), `{"x":true}`)

	objs, err := NewStore(root).List(context.Background())
	if err != nil || len(objs) != 1 {
		t.Fatalf("List: objs=%d err=%v", len(objs), err)
	}
	rc, err := objs[0].Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != `{"x":true}` {
		t.Errorf("body = %q", b)
	}
}

func TestObjectOpenCanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "one.json"), `{}`)
	objs, _ := NewStore(root).List(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := objs[0].Open(ctx); err == nil {
		t.Fatal("Open with canceled context: want error")
	}
}
