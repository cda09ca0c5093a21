package zosfs

import (
	"encoding/binary"
	"fmt"
)

// inode is the fixed 64-byte on-disk record describing one file or
// directory. Layout (little-endian, packed with no alignment holes):
//
//	offset 0  uint32  id
//	offset 4  uint8   fileType
//	offset 5  uint8   hardLinks
//	offset 6  uint32  size
//	offset 10 uint32  direct[5]   (20 bytes)
//	offset 30 uint32  indirect[2] (8 bytes)
//	offset 38 ...     padding to InodeSize
type inode struct {
	id        uint32
	fileType  fileType
	hardLinks uint8
	size      uint32
	direct    [DirectPointers]uint32
	indirect  [IndirectPointers]uint32
}

const (
	inOffID        = 0
	inOffFileType  = inOffID + 4
	inOffHardLinks = inOffFileType + 1
	inOffSize      = inOffHardLinks + 1
	inOffDirect    = inOffSize + 4
	inOffIndirect  = inOffDirect + 4*DirectPointers
	inUsedSize     = inOffIndirect + 4*IndirectPointers
)

func init() {
	if inUsedSize > InodeSize {
		panic(fmt.Sprintf("inode record layout (%d bytes) exceeds InodeSize (%d)", inUsedSize, InodeSize))
	}
}

// free reports whether the id field marks this as an unused inode slot.
func (in *inode) free() bool {
	return in.id == noID
}

func (in *inode) toBytes() []byte {
	b := make([]byte, InodeSize)
	binary.LittleEndian.PutUint32(b[inOffID:], in.id)
	b[inOffFileType] = byte(in.fileType)
	b[inOffHardLinks] = in.hardLinks
	binary.LittleEndian.PutUint32(b[inOffSize:], in.size)
	for i, c := range in.direct {
		binary.LittleEndian.PutUint32(b[inOffDirect+4*i:], c)
	}
	for i, c := range in.indirect {
		binary.LittleEndian.PutUint32(b[inOffIndirect+4*i:], c)
	}
	return b
}

func inodeFromBytes(b []byte) (*inode, error) {
	if len(b) < inUsedSize {
		return nil, fmt.Errorf("inode data too short: %d bytes, need at least %d", len(b), inUsedSize)
	}
	in := &inode{}
	in.id = binary.LittleEndian.Uint32(b[inOffID:])
	in.fileType = fileType(b[inOffFileType])
	in.hardLinks = b[inOffHardLinks]
	in.size = binary.LittleEndian.Uint32(b[inOffSize:])
	for i := range in.direct {
		in.direct[i] = binary.LittleEndian.Uint32(b[inOffDirect+4*i:])
	}
	for i := range in.indirect {
		in.indirect[i] = binary.LittleEndian.Uint32(b[inOffIndirect+4*i:])
	}
	return in, nil
}

// clusterCountForSize returns how many data clusters a file of the inode's
// current size occupies, rounding up.
func (in *inode) clusterCountForSize() uint32 {
	if in.size == 0 {
		return 0
	}
	return uint32((in.size + ClusterSize - 1) / ClusterSize)
}
