package zosfs_test

import (
	"bytes"
	"testing"

	"github.com/go-zosfs/zosfs/testhelper"
	"github.com/go-zosfs/zosfs/zosfs"
)

func newFormatted(t *testing.T, clusters int) *zosfs.FileSystem {
	t.Helper()
	store := testhelper.NewMemStorage(0)
	fs := zosfs.New(store, nil)
	if err := fs.Format(int64(clusters) * zosfs.ClusterSize); err != nil {
		t.Fatalf("Format: %v", err)
	}
	return fs
}

func TestFormatCreatesRoot(t *testing.T) {
	fs := newFormatted(t, 64)
	entries, err := fs.Ls("/")
	if err != nil {
		t.Fatalf("Ls(/): %v", err)
	}
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	if !names["."] || !names[".."] {
		t.Fatalf("root missing reserved entries: %+v", entries)
	}
}

func TestFormatRejectsTooSmall(t *testing.T) {
	store := testhelper.NewMemStorage(0)
	fs := zosfs.New(store, nil)
	if err := fs.Format(zosfs.ClusterSize); err == nil {
		t.Fatalf("expected error formatting with fewer than minClusterCount clusters")
	}
}

func TestMkdirAndLs(t *testing.T) {
	fs := newFormatted(t, 64)
	if err := fs.Mkdir("/a"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Mkdir("/a"); err == nil {
		t.Fatalf("expected EXISTS on duplicate mkdir")
	}
	entries, err := fs.Ls("/")
	if err != nil {
		t.Fatalf("Ls: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Name == "a" {
			found = true
			if !e.IsDir {
				t.Fatalf("expected a to be a directory")
			}
		}
	}
	if !found {
		t.Fatalf("a not found in root listing: %+v", entries)
	}
}

func TestMkdirMissingParent(t *testing.T) {
	fs := newFormatted(t, 64)
	if err := fs.Mkdir("/missing/child"); err == nil {
		t.Fatalf("expected PATH_NOT_FOUND")
	}
}

func TestRmdirEmptyAndNonEmpty(t *testing.T) {
	fs := newFormatted(t, 64)
	if err := fs.Mkdir("/a"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Mkdir("/a/b"); err != nil {
		t.Fatalf("Mkdir nested: %v", err)
	}
	if err := fs.Rmdir("/a"); err == nil {
		t.Fatalf("expected NOT_EMPTY removing populated directory")
	}
	if err := fs.Rmdir("/a/b"); err != nil {
		t.Fatalf("Rmdir empty subdir: %v", err)
	}
	if err := fs.Rmdir("/a"); err != nil {
		t.Fatalf("Rmdir now-empty dir: %v", err)
	}
}

func TestCdAndPwd(t *testing.T) {
	fs := newFormatted(t, 64)
	if err := fs.Mkdir("/a"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Cd("/a"); err != nil {
		t.Fatalf("Cd: %v", err)
	}
	p, err := fs.Pwd()
	if err != nil {
		t.Fatalf("Pwd: %v", err)
	}
	if p != "/a" {
		t.Fatalf("expected /a, got %q", p)
	}
}

func TestIncpOutcpRoundTrip(t *testing.T) {
	fs := newFormatted(t, 64)
	dir := t.TempDir()
	hostIn := dir + "/in.bin"
	payload := bytes.Repeat([]byte("x"), 10000)
	if err := writeHostFile(hostIn, payload); err != nil {
		t.Fatalf("seed host file: %v", err)
	}
	if err := fs.Incp(hostIn, "/big"); err != nil {
		t.Fatalf("Incp: %v", err)
	}
	info, err := fs.Info("/big")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Size != uint32(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), info.Size)
	}
	nonzero := 0
	for _, d := range info.Direct {
		if d != 0 {
			nonzero++
		}
	}
	if nonzero != 3 {
		t.Fatalf("expected 3 non-zero direct pointers for a 10000-byte file, got %d", nonzero)
	}

	hostOut := dir + "/out.bin"
	if err := fs.Outcp("/big", hostOut); err != nil {
		t.Fatalf("Outcp: %v", err)
	}
	got, err := readHostFile(hostOut)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(payload))
	}
}

func TestCatCpMvRm(t *testing.T) {
	fs := newFormatted(t, 64)
	dir := t.TempDir()
	hostIn := dir + "/in.txt"
	if err := writeHostFile(hostIn, []byte("hello world")); err != nil {
		t.Fatalf("seed host file: %v", err)
	}
	if err := fs.Incp(hostIn, "/f"); err != nil {
		t.Fatalf("Incp: %v", err)
	}
	data, err := fs.Cat("/f")
	if err != nil {
		t.Fatalf("Cat: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("unexpected cat contents: %q", data)
	}

	if err := fs.Mkdir("/dst"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Cp("/f", "/dst"); err != nil {
		t.Fatalf("Cp into dir: %v", err)
	}
	if _, err := fs.Cat("/dst/f"); err != nil {
		t.Fatalf("expected copied file at /dst/f: %v", err)
	}

	if err := fs.Mv("/f", "/g"); err != nil {
		t.Fatalf("Mv: %v", err)
	}
	if _, err := fs.Cat("/f"); err == nil {
		t.Fatalf("expected /f to be gone after Mv")
	}
	if _, err := fs.Cat("/g"); err != nil {
		t.Fatalf("expected /g to exist after Mv: %v", err)
	}

	if err := fs.Rm("/g"); err != nil {
		t.Fatalf("Rm: %v", err)
	}
	if _, err := fs.Cat("/g"); err == nil {
		t.Fatalf("expected /g gone after Rm")
	}
}

func TestCpExistingRegularFileFails(t *testing.T) {
	fs := newFormatted(t, 64)
	dir := t.TempDir()
	hostIn := dir + "/in.txt"
	_ = writeHostFile(hostIn, []byte("a"))
	if err := fs.Incp(hostIn, "/a"); err != nil {
		t.Fatalf("Incp a: %v", err)
	}
	if err := fs.Incp(hostIn, "/b"); err != nil {
		t.Fatalf("Incp b: %v", err)
	}
	if err := fs.Cp("/a", "/b"); err == nil {
		t.Fatalf("expected EXISTS copying onto an existing regular file")
	}
}

func TestXcpConcatenates(t *testing.T) {
	fs := newFormatted(t, 64)
	dir := t.TempDir()
	h1 := dir + "/h1"
	h2 := dir + "/h2"
	_ = writeHostFile(h1, []byte("foo"))
	_ = writeHostFile(h2, []byte("bar"))
	if err := fs.Incp(h1, "/s1"); err != nil {
		t.Fatalf("Incp s1: %v", err)
	}
	if err := fs.Incp(h2, "/s2"); err != nil {
		t.Fatalf("Incp s2: %v", err)
	}
	if err := fs.Xcp("/s1", "/s2", "/both"); err != nil {
		t.Fatalf("Xcp: %v", err)
	}
	data, err := fs.Cat("/both")
	if err != nil {
		t.Fatalf("Cat: %v", err)
	}
	if string(data) != "foobar" {
		t.Fatalf("expected foobar, got %q", data)
	}
}

func TestShortTruncatesLargeFilesOnly(t *testing.T) {
	fs := newFormatted(t, 64)
	dir := t.TempDir()
	big := dir + "/big"
	_ = writeHostFile(big, bytes.Repeat([]byte("y"), 6000))
	if err := fs.Incp(big, "/big"); err != nil {
		t.Fatalf("Incp: %v", err)
	}
	if err := fs.Short("/big"); err != nil {
		t.Fatalf("Short: %v", err)
	}
	info, err := fs.Info("/big")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Size != 5000 {
		t.Fatalf("expected truncated size 5000, got %d", info.Size)
	}

	small := dir + "/small"
	_ = writeHostFile(small, []byte("tiny"))
	if err := fs.Incp(small, "/small"); err != nil {
		t.Fatalf("Incp small: %v", err)
	}
	if err := fs.Short("/small"); err != nil {
		t.Fatalf("Short small: %v", err)
	}
	info, err = fs.Info("/small")
	if err != nil {
		t.Fatalf("Info small: %v", err)
	}
	if info.Size != 4 {
		t.Fatalf("expected untouched size 4, got %d", info.Size)
	}
}

func TestOpenReloadsFormattedImage(t *testing.T) {
	store := testhelper.NewMemStorage(0)
	fs1 := zosfs.New(store, nil)
	if err := fs1.Format(64 * zosfs.ClusterSize); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if err := fs1.Mkdir("/a"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	fs2 := zosfs.New(store, nil)
	if err := fs2.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	entries, err := fs2.Ls("/")
	if err != nil {
		t.Fatalf("Ls after reopen: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Name == "a" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected /a to survive reopen: %+v", entries)
	}
}

func TestOperationsBeforeFormatFail(t *testing.T) {
	store := testhelper.NewMemStorage(0)
	fs := zosfs.New(store, nil)
	if err := fs.Mkdir("/a"); err == nil {
		t.Fatalf("expected NOT_FORMATTED before format")
	}
}
