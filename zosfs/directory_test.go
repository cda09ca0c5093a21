package zosfs

import "testing"

func TestDirEntryRoundTrip(t *testing.T) {
	e := dirEntry{inodeID: 7, name: "hello"}
	got := dirEntryFromBytes(e.toBytes())
	if got != e {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, e)
	}
}

func TestDirEntryNamePadding(t *testing.T) {
	e := dirEntry{inodeID: 1, name: "."}
	b := e.toBytes()
	if len(b) != DirEntrySize {
		t.Fatalf("expected %d bytes, got %d", DirEntrySize, len(b))
	}
	for i := 5; i < DirEntrySize; i++ {
		if b[i] != 0 {
			t.Fatalf("expected NUL padding at byte %d, got %d", i, b[i])
		}
	}
}

func TestCreateEmptyFileRejectsDuplicate(t *testing.T) {
	fs := newTestFS(t, 64)
	root, err := fs.inodeRead(fs.rootID)
	if err != nil {
		t.Fatalf("inodeRead root: %v", err)
	}
	if _, err := fs.createEmptyFile(root, "dup"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := fs.createEmptyFile(root, "dup"); err == nil {
		t.Fatalf("expected EXISTS on duplicate name")
	}
}

func TestRemoveEntryFreesRegularFileAtZeroLinks(t *testing.T) {
	fs := newTestFS(t, 64)
	root, err := fs.inodeRead(fs.rootID)
	if err != nil {
		t.Fatalf("inodeRead root: %v", err)
	}
	child, err := fs.createEmptyFile(root, "f")
	if err != nil {
		t.Fatalf("createEmptyFile: %v", err)
	}
	root, _ = fs.inodeRead(fs.rootID)
	if err := fs.removeEntry(root, "f"); err != nil {
		t.Fatalf("removeEntry: %v", err)
	}
	if _, err := fs.inodeRead(child.id); err == nil {
		t.Fatalf("expected freed inode to be unreadable")
	}
}

func TestRemoveEntryRejectsReservedNames(t *testing.T) {
	fs := newTestFS(t, 64)
	root, _ := fs.inodeRead(fs.rootID)
	for _, name := range []string{".", "..", "/"} {
		if err := fs.removeEntry(root, name); err == nil {
			t.Fatalf("expected error removing reserved name %q", name)
		}
	}
}

func TestSortEntriesOrdering(t *testing.T) {
	fs := newTestFS(t, 64)
	root, _ := fs.inodeRead(fs.rootID)
	if _, err := fs.createEmptyDir(root, "zdir", false); err != nil {
		t.Fatalf("createEmptyDir: %v", err)
	}
	root, _ = fs.inodeRead(fs.rootID)
	if _, err := fs.createEmptyFile(root, "afile"); err != nil {
		t.Fatalf("createEmptyFile: %v", err)
	}
	root, _ = fs.inodeRead(fs.rootID)
	entries, err := fs.getDirEntries(root)
	if err != nil {
		t.Fatalf("getDirEntries: %v", err)
	}
	fs.sortEntries(entries)

	var names []string
	for _, e := range entries {
		names = append(names, e.name)
	}
	want := []string{".", "..", "zdir", "afile"}
	if len(names) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), names)
	}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("position %d: got %q want %q (full order %+v)", i, names[i], n, names)
		}
	}
}
