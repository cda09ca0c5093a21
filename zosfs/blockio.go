package zosfs

import (
	"github.com/go-zosfs/zosfs/util/bitmap"
	"github.com/go-zosfs/zosfs/zoserr"
)

// loadBitmaps reads the on-disk inode and data bitmaps into memory. Called
// once at Open; after that, the in-memory copies are authoritative and
// flushBitmaps writes them back out after every mutation.
func (fs *FileSystem) loadBitmaps() error {
	w, err := fs.storage.Writable()
	if err != nil {
		return zoserr.New(zoserr.IO, "loadBitmaps", err)
	}
	inodeBmBytes := clusterAlignedSize(fs.sb.inodeTableStart - fs.sb.inodeBitmapStart)
	dataBmBytes := clusterAlignedSize(fs.sb.inodeBitmapStart - fs.sb.dataBitmapStart)

	ib := make([]byte, inodeBmBytes)
	if _, err := w.ReadAt(ib, int64(fs.sb.inodeBitmapStart)); err != nil {
		return zoserr.New(zoserr.IO, "loadBitmaps", err)
	}
	db := make([]byte, dataBmBytes)
	if _, err := w.ReadAt(db, int64(fs.sb.dataBitmapStart)); err != nil {
		return zoserr.New(zoserr.IO, "loadBitmaps", err)
	}
	fs.inodeBitmap = bitmap.FromBytes(ib)
	fs.dataBitmap = bitmap.FromBytes(db)
	return nil
}

// flushBitmaps writes both in-memory bitmaps back to their on-disk
// regions. Callers are expected to flushSuperblock afterward so the free
// counts and the bitmap contents never disagree on disk.
func (fs *FileSystem) flushBitmaps() error {
	w, err := fs.storage.Writable()
	if err != nil {
		return zoserr.New(zoserr.IO, "flushBitmaps", err)
	}
	if _, err := w.WriteAt(fs.inodeBitmap.ToBytes(), int64(fs.sb.inodeBitmapStart)); err != nil {
		return zoserr.New(zoserr.IO, "flushBitmaps", err)
	}
	if _, err := w.WriteAt(fs.dataBitmap.ToBytes(), int64(fs.sb.dataBitmapStart)); err != nil {
		return zoserr.New(zoserr.IO, "flushBitmaps", err)
	}
	return nil
}

func (fs *FileSystem) flushSuperblock() error {
	w, err := fs.storage.Writable()
	if err != nil {
		return zoserr.New(zoserr.IO, "flushSuperblock", err)
	}
	if _, err := w.WriteAt(fs.sb.toBytes(), 0); err != nil {
		return zoserr.New(zoserr.IO, "flushSuperblock", err)
	}
	return nil
}

// readCluster reads at most len(buf) bytes from data cluster id, starting
// offset bytes into the cluster. id 0 denotes "no cluster" and yields 0
// bytes read without touching buf, per the block I/O contract.
func (fs *FileSystem) readCluster(id uint32, offset int, buf []byte) (int, error) {
	if id == 0 {
		return 0, nil
	}
	w, err := fs.storage.Writable()
	if err != nil {
		return 0, zoserr.New(zoserr.IO, "readCluster", err)
	}
	n, err := w.ReadAt(buf, fs.clusterOffset(id)+int64(offset))
	if err != nil && n == 0 {
		return 0, zoserr.New(zoserr.IO, "readCluster", err)
	}
	return n, nil
}

// writeCluster writes data into cluster id at the given offset. If asData
// is true and id is 0, a fresh data cluster is allocated first. Only the
// bytes [offset, offset+len(data)) of the cluster are written; the rest of
// the cluster is left as it was, so callers replacing a whole cluster pass
// offset 0 and a full cluster of data. Returns the (possibly newly
// allocated) cluster id.
func (fs *FileSystem) writeCluster(id uint32, data []byte, offset int, asData bool) (uint32, error) {
	if id == 0 {
		if !asData {
			return 0, zoserr.New(zoserr.IO, "writeCluster", nil)
		}
		newID, err := fs.allocDataCluster()
		if err != nil {
			return 0, err
		}
		id = newID
	}
	w, err := fs.storage.Writable()
	if err != nil {
		return 0, zoserr.New(zoserr.IO, "writeCluster", err)
	}
	if _, err := w.WriteAt(data, fs.clusterOffset(id)+int64(offset)); err != nil {
		return 0, zoserr.New(zoserr.IO, "writeCluster", err)
	}
	return id, nil
}

// freeCluster clears the data-bitmap bit for id and bumps the free count.
// A no-op for id 0.
func (fs *FileSystem) freeCluster(id uint32) error {
	if id == 0 {
		return nil
	}
	if err := fs.dataBitmap.Clear(int(id - 1)); err != nil {
		return zoserr.New(zoserr.IO, "freeCluster", err)
	}
	fs.sb.freeClusterCount++
	return nil
}

func (fs *FileSystem) allocDataCluster() (uint32, error) {
	idx := fs.dataBitmap.FirstZero(0, int(fs.sb.dataClusterCount()))
	if idx < 0 {
		return 0, zoserr.New(zoserr.OutOfSpace, "allocDataCluster", nil)
	}
	if err := fs.dataBitmap.Set(idx); err != nil {
		return 0, zoserr.New(zoserr.IO, "allocDataCluster", err)
	}
	fs.sb.freeClusterCount--
	return uint32(idx + 1), nil
}

// clusterOffset returns the absolute byte offset of data cluster id
// (1-based) within the backing image.
func (fs *FileSystem) clusterOffset(id uint32) int64 {
	return int64(fs.sb.dataRegionStart) + int64(id-1)*int64(ClusterSize)
}

func clusterAlignedSize(n uint32) uint32 {
	return ((n + ClusterSize - 1) / ClusterSize) * ClusterSize
}
