package file_test

import (
	"path/filepath"
	"testing"

	"github.com/go-zosfs/zosfs/backend/file"
)

func TestCreateFromPathThenReopen(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "image.bin")

	store, err := file.CreateFromPath(imgPath, 4096*5)
	if err != nil {
		t.Fatalf("CreateFromPath: %v", err)
	}
	w, err := store.Writable()
	if err != nil {
		t.Fatalf("Writable: %v", err)
	}
	if _, err := w.WriteAt([]byte("hello"), 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if err := store.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := file.OpenFromPath(imgPath, true)
	if err != nil {
		t.Fatalf("OpenFromPath: %v", err)
	}
	defer reopened.Close()
	buf := make([]byte, 5)
	if _, err := reopened.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf) != "hello" {
		t.Fatalf("expected 'hello', got %q", buf)
	}
}

func TestOpenFromPathMissingFile(t *testing.T) {
	if _, err := file.OpenFromPath("/nonexistent/path/image.bin", true); err == nil {
		t.Fatalf("expected error opening a nonexistent file")
	}
}

func TestCreateFromPathRejectsNonPositiveSize(t *testing.T) {
	dir := t.TempDir()
	if _, err := file.CreateFromPath(filepath.Join(dir, "x.bin"), 0); err == nil {
		t.Fatalf("expected error for zero size")
	}
}
