package zosfs

import (
	"encoding/binary"
	"fmt"
)

// superblock is the fixed record persisted at byte offset 0 of the image
// (cluster 0). Every multi-byte field is little-endian; see inodeFromBytes
// and dirEntry for the sibling on-disk records.
type superblock struct {
	signature        [SignatureSize]byte
	inodeCount       uint32
	clusterCount     uint32
	freeInodeCount   uint32
	freeClusterCount uint32
	diskSize         uint64
	clusterSize      uint16
	inodeBitmapStart uint32 // absolute byte offset
	dataBitmapStart  uint32 // absolute byte offset
	inodeTableStart  uint32 // absolute byte offset
	dataRegionStart  uint32 // absolute byte offset
	inodeSize        uint32
}

// Byte layout within cluster 0. Kept as explicit offsets, not a struct dump,
// so the format is stable independent of Go's field layout or padding.
const (
	sbOffSignature        = 0x00
	sbOffInodeCount        = sbOffSignature + SignatureSize
	sbOffClusterCount      = sbOffInodeCount + 4
	sbOffFreeInodeCount    = sbOffClusterCount + 4
	sbOffFreeClusterCount  = sbOffFreeInodeCount + 4
	sbOffDiskSize          = sbOffFreeClusterCount + 4
	sbOffClusterSize       = sbOffDiskSize + 8
	sbOffInodeBitmapStart  = sbOffClusterSize + 2
	sbOffDataBitmapStart   = sbOffInodeBitmapStart + 4
	sbOffInodeTableStart   = sbOffDataBitmapStart + 4
	sbOffDataRegionStart   = sbOffInodeTableStart + 4
	sbOffInodeSize         = sbOffDataRegionStart + 4
	sbRecordSize           = sbOffInodeSize + 4
)

func (sb *superblock) toBytes() []byte {
	b := make([]byte, ClusterSize)
	copy(b[sbOffSignature:], sb.signature[:])
	binary.LittleEndian.PutUint32(b[sbOffInodeCount:], sb.inodeCount)
	binary.LittleEndian.PutUint32(b[sbOffClusterCount:], sb.clusterCount)
	binary.LittleEndian.PutUint32(b[sbOffFreeInodeCount:], sb.freeInodeCount)
	binary.LittleEndian.PutUint32(b[sbOffFreeClusterCount:], sb.freeClusterCount)
	binary.LittleEndian.PutUint64(b[sbOffDiskSize:], sb.diskSize)
	binary.LittleEndian.PutUint16(b[sbOffClusterSize:], sb.clusterSize)
	binary.LittleEndian.PutUint32(b[sbOffInodeBitmapStart:], sb.inodeBitmapStart)
	binary.LittleEndian.PutUint32(b[sbOffDataBitmapStart:], sb.dataBitmapStart)
	binary.LittleEndian.PutUint32(b[sbOffInodeTableStart:], sb.inodeTableStart)
	binary.LittleEndian.PutUint32(b[sbOffDataRegionStart:], sb.dataRegionStart)
	binary.LittleEndian.PutUint32(b[sbOffInodeSize:], sb.inodeSize)
	return b
}

func superblockFromBytes(b []byte) (*superblock, error) {
	if len(b) < sbRecordSize {
		return nil, fmt.Errorf("superblock data too short: %d bytes, need at least %d", len(b), sbRecordSize)
	}
	sb := &superblock{}
	copy(sb.signature[:], b[sbOffSignature:sbOffSignature+SignatureSize])
	sb.inodeCount = binary.LittleEndian.Uint32(b[sbOffInodeCount:])
	sb.clusterCount = binary.LittleEndian.Uint32(b[sbOffClusterCount:])
	sb.freeInodeCount = binary.LittleEndian.Uint32(b[sbOffFreeInodeCount:])
	sb.freeClusterCount = binary.LittleEndian.Uint32(b[sbOffFreeClusterCount:])
	sb.diskSize = binary.LittleEndian.Uint64(b[sbOffDiskSize:])
	sb.clusterSize = binary.LittleEndian.Uint16(b[sbOffClusterSize:])
	sb.inodeBitmapStart = binary.LittleEndian.Uint32(b[sbOffInodeBitmapStart:])
	sb.dataBitmapStart = binary.LittleEndian.Uint32(b[sbOffDataBitmapStart:])
	sb.inodeTableStart = binary.LittleEndian.Uint32(b[sbOffInodeTableStart:])
	sb.dataRegionStart = binary.LittleEndian.Uint32(b[sbOffDataRegionStart:])
	sb.inodeSize = binary.LittleEndian.Uint32(b[sbOffInodeSize:])

	if sb.clusterSize != ClusterSize {
		return nil, fmt.Errorf("unsupported cluster size %d, only %d is supported", sb.clusterSize, ClusterSize)
	}
	wantDataRegionStart := sb.inodeTableStart + sb.inodeCount*sb.inodeSize
	if sb.dataRegionStart != wantDataRegionStart {
		return nil, fmt.Errorf("corrupt superblock: data region start %d does not follow inode table (want %d)", sb.dataRegionStart, wantDataRegionStart)
	}
	if sb.freeInodeCount > sb.inodeCount {
		return nil, fmt.Errorf("corrupt superblock: free inode count %d exceeds inode count %d", sb.freeInodeCount, sb.inodeCount)
	}
	if sb.freeClusterCount > sb.clusterCount {
		return nil, fmt.Errorf("corrupt superblock: free cluster count %d exceeds cluster count %d", sb.freeClusterCount, sb.clusterCount)
	}
	return sb, nil
}

// dataClusterCount is the number of clusters available to the data region.
func (sb *superblock) dataClusterCount() uint32 {
	return sb.clusterCount - sb.dataRegionStart/uint32(sb.clusterSize)
}
