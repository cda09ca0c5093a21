package zosfs

import (
	"github.com/go-zosfs/zosfs/zoserr"
)

// inodeOffset returns the absolute byte offset of inode id (1-based) in
// the inode table.
func (fs *FileSystem) inodeOffset(id uint32) int64 {
	return int64(fs.sb.inodeTableStart) + int64(id-1)*int64(InodeSize)
}

// inodeCreate finds the first free inode slot, marks it allocated, and
// writes a zeroed inode record with the newly assigned id and file type.
func (fs *FileSystem) inodeCreate(ft fileType) (*inode, error) {
	idx := fs.inodeBitmap.FirstZero(0, int(fs.sb.inodeCount))
	if idx < 0 {
		return nil, zoserr.New(zoserr.OutOfSpace, "inodeCreate", nil)
	}
	if err := fs.inodeBitmap.Set(idx); err != nil {
		return nil, zoserr.New(zoserr.IO, "inodeCreate", err)
	}
	fs.sb.freeInodeCount--

	in := &inode{id: uint32(idx + 1), fileType: ft}
	if err := fs.inodeWrite(in); err != nil {
		return nil, err
	}
	if err := fs.flushBitmaps(); err != nil {
		return nil, err
	}
	if err := fs.flushSuperblock(); err != nil {
		return nil, err
	}
	return in, nil
}

// inodeRead loads the inode record for id. Rejects id 0 and ids whose
// bitmap bit is clear.
func (fs *FileSystem) inodeRead(id uint32) (*inode, error) {
	if id == 0 || id > fs.sb.inodeCount {
		return nil, zoserr.New(zoserr.FileNotFound, "inodeRead", nil)
	}
	set, err := fs.inodeBitmap.IsSet(int(id - 1))
	if err != nil {
		return nil, zoserr.New(zoserr.IO, "inodeRead", err)
	}
	if !set {
		return nil, zoserr.New(zoserr.FileNotFound, "inodeRead", nil)
	}
	w, err := fs.storage.Writable()
	if err != nil {
		return nil, zoserr.New(zoserr.IO, "inodeRead", err)
	}
	buf := make([]byte, InodeSize)
	if _, err := w.ReadAt(buf, fs.inodeOffset(id)); err != nil {
		return nil, zoserr.New(zoserr.IO, "inodeRead", err)
	}
	in, err := inodeFromBytes(buf)
	if err != nil {
		return nil, zoserr.New(zoserr.IO, "inodeRead", err)
	}
	return in, nil
}

// inodeWrite overwrites the on-disk slot for in.id in place.
func (fs *FileSystem) inodeWrite(in *inode) error {
	w, err := fs.storage.Writable()
	if err != nil {
		return zoserr.New(zoserr.IO, "inodeWrite", err)
	}
	if _, err := w.WriteAt(in.toBytes(), fs.inodeOffset(in.id)); err != nil {
		return zoserr.New(zoserr.IO, "inodeWrite", err)
	}
	return nil
}

// inodeFree releases every cluster transitively reachable from the
// inode's pointers, clears its bitmap bit, and bumps the free count.
func (fs *FileSystem) inodeFree(id uint32) error {
	in, err := fs.inodeRead(id)
	if err != nil {
		return err
	}
	if err := fs.releaseAllClusters(in); err != nil {
		return err
	}
	if err := fs.inodeBitmap.Clear(int(id - 1)); err != nil {
		return zoserr.New(zoserr.IO, "inodeFree", err)
	}
	fs.sb.freeInodeCount++

	w, err := fs.storage.Writable()
	if err != nil {
		return zoserr.New(zoserr.IO, "inodeFree", err)
	}
	if _, err := w.WriteAt(make([]byte, InodeSize), fs.inodeOffset(id)); err != nil {
		return zoserr.New(zoserr.IO, "inodeFree", err)
	}

	if err := fs.flushBitmaps(); err != nil {
		return err
	}
	return fs.flushSuperblock()
}
