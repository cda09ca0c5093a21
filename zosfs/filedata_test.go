package zosfs

import (
	"bytes"
	"testing"

	"github.com/go-zosfs/zosfs/testhelper"
)

func newTestFS(t *testing.T, clusters int) *FileSystem {
	t.Helper()
	store := testhelper.NewMemStorage(0)
	fs := New(store, nil)
	if err := fs.Format(int64(clusters) * ClusterSize); err != nil {
		t.Fatalf("Format: %v", err)
	}
	return fs
}

func TestCapacityAtRank(t *testing.T) {
	if got := capacityAtRank(0); got != ClusterSize {
		t.Fatalf("rank 0 capacity: got %d want %d", got, ClusterSize)
	}
	want1 := uint64(pointersPerIndexCluster) * ClusterSize
	if got := capacityAtRank(1); got != want1 {
		t.Fatalf("rank 1 capacity: got %d want %d", got, want1)
	}
}

func TestWriteReadDataAcrossDirectPointers(t *testing.T) {
	fs := newTestFS(t, 64)
	in, err := fs.inodeCreate(typeRegular)
	if err != nil {
		t.Fatalf("inodeCreate: %v", err)
	}
	payload := bytes.Repeat([]byte("a"), 3*ClusterSize+100)
	if err := fs.writeData(in, payload, false); err != nil {
		t.Fatalf("writeData: %v", err)
	}
	if in.size != uint32(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), in.size)
	}

	out := make([]byte, in.size)
	n, err := fs.readData(in, out)
	if err != nil {
		t.Fatalf("readData: %v", err)
	}
	if n != len(payload) || !bytes.Equal(out, payload) {
		t.Fatalf("read back mismatch: got %d bytes", n)
	}
}

func TestWriteDataIntoIndirectTier(t *testing.T) {
	fs := newTestFS(t, 2048)
	in, err := fs.inodeCreate(typeRegular)
	if err != nil {
		t.Fatalf("inodeCreate: %v", err)
	}
	size := DirectPointers*ClusterSize + 10*ClusterSize
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := fs.writeData(in, payload, false); err != nil {
		t.Fatalf("writeData: %v", err)
	}
	if in.indirect[0] == 0 {
		t.Fatalf("expected single-indirect pointer to be allocated")
	}
	out := make([]byte, in.size)
	if _, err := fs.readData(in, out); err != nil {
		t.Fatalf("readData: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("read back mismatch across indirect tier")
	}
}

func TestWriteDataAppendMode(t *testing.T) {
	fs := newTestFS(t, 64)
	in, err := fs.inodeCreate(typeRegular)
	if err != nil {
		t.Fatalf("inodeCreate: %v", err)
	}
	if err := fs.writeData(in, []byte("hello "), false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := fs.writeData(in, []byte("world"), true); err != nil {
		t.Fatalf("append write: %v", err)
	}
	out := make([]byte, in.size)
	if _, err := fs.readData(in, out); err != nil {
		t.Fatalf("readData: %v", err)
	}
	if string(out) != "hello world" {
		t.Fatalf("expected \"hello world\", got %q", out)
	}
}

func TestWriteDataRejectsTooLarge(t *testing.T) {
	fs := newTestFS(t, 64)
	in, err := fs.inodeCreate(typeRegular)
	if err != nil {
		t.Fatalf("inodeCreate: %v", err)
	}
	in.size = 4294967295 // near the uint32 ceiling, well past any realistic write
	if err := fs.writeData(in, bytes.Repeat([]byte("x"), 5_000_000), true); err == nil {
		t.Fatalf("expected TOO_LARGE error")
	}
}

func TestReleaseAllClustersFreesDataBitmap(t *testing.T) {
	fs := newTestFS(t, 64)
	in, err := fs.inodeCreate(typeRegular)
	if err != nil {
		t.Fatalf("inodeCreate: %v", err)
	}
	freeBefore := fs.sb.freeClusterCount
	if err := fs.writeData(in, bytes.Repeat([]byte("z"), 2*ClusterSize), false); err != nil {
		t.Fatalf("writeData: %v", err)
	}
	if fs.sb.freeClusterCount >= freeBefore {
		t.Fatalf("expected free cluster count to drop after writing")
	}
	if err := fs.releaseAllClusters(in); err != nil {
		t.Fatalf("releaseAllClusters: %v", err)
	}
	if fs.sb.freeClusterCount != freeBefore {
		t.Fatalf("expected free cluster count to return to %d, got %d", freeBefore, fs.sb.freeClusterCount)
	}
}
